package ledger

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/cleared-dev/tally/internal/model"
)

// TopKByOutgoing ranks senders by the total they transferred out within
// [start, end]: highest total first, ties by ascending id. Accounts without a
// qualifying transfer are left out. Deposits and merges never count.
func (l *Ledger) TopKByOutgoing(start, end int64, k int) ([]string, error) {
	if k <= 0 {
		return nil, l.reject("top_k_by_outgoing", ErrInvalidK)
	}
	if start > end {
		return nil, l.reject("top_k_by_outgoing", ErrInvalidWindow)
	}

	l.mu.Lock()
	totals := make(map[string]int64)
	for _, r := range l.records {
		t, ok := r.(model.Transfer)
		if !ok || !model.InWindow(t, start, end) {
			continue
		}
		totals[t.From] += t.Amount
	}
	l.mu.Unlock()

	ranked := make([]senderTotal, 0, len(totals))
	for acct, total := range totals {
		if total > 0 {
			ranked = append(ranked, senderTotal{account: acct, total: total})
		}
	}
	slices.SortFunc(ranked, func(x, y senderTotal) int {
		if c := cmp.Compare(y.total, x.total); c != 0 {
			return c
		}
		return cmp.Compare(x.account, y.account)
	})

	ids := make([]string, 0, min(k, len(ranked)))
	for _, r := range ranked[:min(k, len(ranked))] {
		ids = append(ids, r.account)
	}
	return ids, nil
}

// TopKByOutgoingAllTime is TopKByOutgoing over the whole log.
func (l *Ledger) TopKByOutgoingAllTime(k int) ([]string, error) {
	return l.TopKByOutgoing(math.MinInt64, math.MaxInt64, k)
}

// Statement counts the log entries in [start, end] that involve accountID:
// transfers it sent or received, and merges that produced it. Deposits are not
// counted. Merge records never count toward the merged sources.
//
// ErrNotFound is returned only for ids that were never created and appear in
// no log entry. An inverted window yields 0 for any known id.
func (l *Ledger) Statement(accountID string, start, end int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, known := l.accounts[accountID]
	count := 0
	for _, r := range l.records {
		if !r.Mentions(accountID) {
			continue
		}
		known = true
		if r.Kind() == model.KindDeposit || start > end || !model.InWindow(r, start, end) {
			continue
		}
		count++
	}
	if !known {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, accountID)
	}
	return count, nil
}

type senderTotal struct {
	account string
	total   int64
}

func sortScheduled(s []model.Scheduled) {
	slices.SortFunc(s, func(x, y model.Scheduled) int {
		switch {
		case x.Before(y):
			return -1
		case y.Before(x):
			return 1
		}
		return 0
	})
}
