package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cleared-dev/tally/internal/export"
	"github.com/cleared-dev/tally/internal/ledger"
)

// Result is the outcome of one operation. Err holds the business failure, if
// any; it never stops the replay.
type Result struct {
	Op    Op
	Value string
	Err   error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%d %s -> failed: %v", r.Op.Line, r.Op.Kind, r.Err)
	}
	return fmt.Sprintf("%d %s -> %s", r.Op.Line, r.Op.Kind, r.Value)
}

// Execute applies ops to l in order. Balances in results are rendered with
// scale decimal places.
func Execute(l *ledger.Ledger, ops []Op, scale int32) []Result {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		value, err := apply(l, op, scale)
		results = append(results, Result{Op: op, Value: value, Err: err})
	}
	return results
}

func apply(l *ledger.Ledger, op Op, scale int32) (string, error) {
	amount := func(v int64, err error) (string, error) {
		if err != nil {
			return "", err
		}
		return export.FormatAmount(v, scale), nil
	}

	switch op.Kind {
	case OpCreateAccount:
		if err := l.CreateAccount(op.IDs[0], op.Nums[0]); err != nil {
			return "", err
		}
		return "ok", nil
	case OpDeposit:
		return amount(l.Deposit(op.IDs[0], op.Nums[0], op.Nums[1]))
	case OpTransfer:
		return amount(l.Transfer(op.IDs[0], op.IDs[1], op.Nums[0], op.Nums[1]))
	case OpScheduleTransfer:
		return l.ScheduleTransfer(op.IDs[0], op.IDs[1], op.Nums[0], op.Nums[1])
	case OpCancelScheduled:
		if err := l.CancelScheduled(op.IDs[0]); err != nil {
			return "", err
		}
		return "ok", nil
	case OpRunScheduledUntil:
		return strconv.Itoa(l.RunScheduledUntil(op.Nums[0])), nil
	case OpMergeAccounts:
		return amount(l.MergeAccounts(op.IDs[0], op.IDs[1], op.IDs[2], op.Nums[0]))
	case OpGetBalance:
		return amount(l.Balance(op.IDs[0]))
	case OpTopKByOutgoing:
		ids, err := l.TopKByOutgoing(op.Nums[0], op.Nums[1], int(op.Nums[2]))
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(ids, " ") + "]", nil
	case OpGetStatement:
		n, err := l.Statement(op.IDs[0], op.Nums[0], op.Nums[1])
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownOp, op.Kind)
}
