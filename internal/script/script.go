// Package script reads ledger operation scripts and replays them into a Ledger.
//
// A script is CSV, one operation per row. The first field names the operation;
// account and schedule ids come next, then integer arguments. Lines starting
// with '#' are comments.
package script

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cleared-dev/tally/internal/id"
)

// OpKind names an operation.
type OpKind string

const (
	OpCreateAccount     OpKind = "create_account"
	OpDeposit           OpKind = "deposit"
	OpTransfer          OpKind = "transfer"
	OpScheduleTransfer  OpKind = "schedule_transfer"
	OpCancelScheduled   OpKind = "cancel_scheduled"
	OpRunScheduledUntil OpKind = "run_scheduled_until"
	OpMergeAccounts     OpKind = "merge_accounts"
	OpGetBalance        OpKind = "get_balance"
	OpTopKByOutgoing    OpKind = "top_k_by_outgoing"
	OpGetStatement      OpKind = "get_statement"
)

// signature is the number of id arguments followed by integer arguments.
type signature struct {
	ids  int
	nums int
}

var signatures = map[OpKind]signature{
	OpCreateAccount:     {ids: 1, nums: 1},
	OpDeposit:           {ids: 1, nums: 2},
	OpTransfer:          {ids: 2, nums: 2},
	OpScheduleTransfer:  {ids: 2, nums: 2},
	OpCancelScheduled:   {ids: 1, nums: 0},
	OpRunScheduledUntil: {ids: 0, nums: 1},
	OpMergeAccounts:     {ids: 3, nums: 1},
	OpGetBalance:        {ids: 1, nums: 0},
	OpTopKByOutgoing:    {ids: 0, nums: 3},
	OpGetStatement:      {ids: 1, nums: 2},
}

// Op is one parsed script row.
type Op struct {
	Line int // 1-based line in the script
	Kind OpKind
	IDs  []string
	Nums []int64
}

func (o Op) String() string {
	parts := []string{string(o.Kind)}
	parts = append(parts, o.IDs...)
	for _, n := range o.Nums {
		parts = append(parts, strconv.FormatInt(n, 10))
	}
	return strings.Join(parts, ",")
}

// ErrUnknownOp is returned by Parse for an unrecognized operation name.
var ErrUnknownOp = errors.New("unknown operation")

// Parse reads every operation from r. Errors carry the offending line number.
func Parse(r io.Reader) ([]Op, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var ops []Op
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		line, _ := cr.FieldPos(0)
		op, err := parseOp(line, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ParseFile opens path and parses it as a script.
func ParseFile(path string) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func parseOp(line int, rec []string) (Op, error) {
	kind := OpKind(strings.TrimSpace(rec[0]))
	sig, ok := signatures[kind]
	if !ok {
		return Op{}, fmt.Errorf("%w %q", ErrUnknownOp, rec[0])
	}
	args := rec[1:]
	if len(args) != sig.ids+sig.nums {
		return Op{}, fmt.Errorf("%s expects %d arguments, got %d", kind, sig.ids+sig.nums, len(args))
	}

	op := Op{Line: line, Kind: kind}
	for _, a := range args[:sig.ids] {
		op.IDs = append(op.IDs, strings.TrimSpace(a))
	}
	if kind == OpCancelScheduled {
		if _, err := id.ParseScheduleID(op.IDs[0]); err != nil {
			return Op{}, fmt.Errorf("%s: %w", kind, err)
		}
	}
	for _, a := range args[sig.ids:] {
		n, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return Op{}, fmt.Errorf("%s: parsing integer %q: %w", kind, a, err)
		}
		op.Nums = append(op.Nums, n)
	}
	return op, nil
}
