package ledger

import (
	"fmt"

	"github.com/cleared-dev/tally/internal/model"
)

// MergeAccounts closes a and b and opens merged with their combined balance.
// Pending transfers that reference a or b are repointed at merged, and a Merge
// record is appended. Returns the merged balance. Not reversible: a and b keep
// their history but never accept another deposit, transfer or schedule.
func (l *Ledger) MergeAccounts(a, b, merged string, ts int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if merged == "" {
		return 0, l.reject("merge_accounts", ErrInvalidID)
	}
	if a == b || a == merged || b == merged {
		return 0, l.reject("merge_accounts", ErrSelfMerge)
	}
	srcA, ok := l.accounts[a]
	if !ok {
		return 0, l.reject("merge_accounts", fmt.Errorf("%w: %s", ErrNotFound, a))
	}
	srcB, ok := l.accounts[b]
	if !ok {
		return 0, l.reject("merge_accounts", fmt.Errorf("%w: %s", ErrNotFound, b))
	}
	if _, ok := l.accounts[merged]; ok {
		return 0, l.reject("merge_accounts", fmt.Errorf("%w: %s", ErrMergeTargetExists, merged))
	}
	for _, src := range []*model.Account{srcA, srcB} {
		if !src.Active() {
			return 0, l.reject("merge_accounts", fmt.Errorf("%w: %s", ErrAccountClosed, src.ID))
		}
	}

	balance := srcA.Balance + srcB.Balance
	l.accounts[merged] = &model.Account{
		ID:      merged,
		Balance: balance,
		Status:  model.StatusActive,
	}
	srcA.Status = model.StatusClosed
	srcB.Status = model.StatusClosed

	for _, s := range l.pending {
		if s.From == a || s.From == b {
			s.From = merged
		}
		if s.To == a || s.To == b {
			s.To = merged
		}
	}

	l.records = append(l.records, model.Merge{A: a, B: b, Merged: merged, Timestamp: ts})
	return balance, nil
}
