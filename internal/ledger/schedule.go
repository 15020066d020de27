package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/model"
)

// ScheduleTransfer queues a transfer to run once a sweep reaches executeAt.
// Both accounts must be active and amount positive; funds are only checked
// when the transfer executes. Returns the new schedule id.
func (l *Ledger) ScheduleTransfer(from, to string, amount, executeAt int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.activeAccount(from); err != nil {
		return "", l.reject("schedule_transfer", err)
	}
	if _, err := l.activeAccount(to); err != nil {
		return "", l.reject("schedule_transfer", err)
	}
	if amount <= 0 {
		return "", l.reject("schedule_transfer", ErrBadAmount)
	}

	seq := l.seq.Next()
	scheduleID := id.FormatScheduleID(seq)
	l.pending[scheduleID] = &model.Scheduled{
		ID:        scheduleID,
		Seq:       seq,
		From:      from,
		To:        to,
		Amount:    amount,
		ExecuteAt: executeAt,
	}
	return scheduleID, nil
}

// CancelScheduled drops a pending transfer. Cancelling an id that already ran,
// was cancelled, or never existed returns ErrScheduleNotFound.
func (l *Ledger) CancelScheduled(scheduleID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.pending[scheduleID]; !ok {
		return l.reject("cancel_scheduled", fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID))
	}
	delete(l.pending, scheduleID)
	return nil
}

// RunScheduledUntil executes every pending transfer with ExecuteAt <= ts in
// (ExecuteAt, creation) order and returns how many succeeded. Each entry is
// removed before it is attempted; a failed transfer is discarded, not retried.
func (l *Ledger) RunScheduledUntil(ts int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var due []model.Scheduled
	for _, s := range l.pendingLocked() {
		if s.ExecuteAt <= ts {
			due = append(due, s)
		}
	}

	executed := 0
	for _, s := range due {
		delete(l.pending, s.ID)

		entry := l.log.WithFields(logrus.Fields{
			"schedule_id": s.ID,
			"from":        s.From,
			"to":          s.To,
			"amount":      s.Amount,
			"execute_at":  s.ExecuteAt,
		})
		if _, err := l.transfer(s.From, s.To, s.Amount, s.ExecuteAt); err != nil {
			entry.WithField("reason", err.Error()).Debug("scheduled transfer dropped")
			continue
		}
		entry.Debug("scheduled transfer executed")
		executed++
	}
	return executed
}

// Pending returns the pending transfers in execution order.
func (l *Ledger) Pending() []model.Scheduled {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingLocked()
}

func (l *Ledger) pendingLocked() []model.Scheduled {
	out := make([]model.Scheduled, 0, len(l.pending))
	for _, s := range l.pending {
		out = append(out, *s)
	}
	sortScheduled(out)
	return out
}
