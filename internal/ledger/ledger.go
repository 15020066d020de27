// Package ledger is the in-memory ledger engine: account balances, an
// append-only transaction log and a table of pending scheduled transfers.
//
// All methods are serialized by a single mutex, so a transfer's balance check
// and its mutation are observed atomically by every other call. Validation
// always completes before any state changes; a failed call leaves the ledger
// untouched.
package ledger

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/model"
)

// Ledger owns accounts, the transaction log and the pending schedule table.
type Ledger struct {
	mu       sync.Mutex
	log      logrus.FieldLogger
	accounts map[string]*model.Account
	records  []model.Record
	pending  map[string]*model.Scheduled
	seq      id.Sequence
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger routes rejected operations and sweep outcomes to l at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(lg *Ledger) {
		if l != nil {
			lg.log = l
		}
	}
}

// New creates an empty Ledger.
func New(opts ...Option) *Ledger {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Ledger{
		log:      discard,
		accounts: make(map[string]*model.Account),
		pending:  make(map[string]*model.Scheduled),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateAccount opens an active account. The id must be non-empty and unused
// by any account, active or closed. The initial balance is taken as given.
func (l *Ledger) CreateAccount(accountID string, initialBalance int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if accountID == "" {
		return l.reject("create_account", ErrInvalidID)
	}
	if _, ok := l.accounts[accountID]; ok {
		return l.reject("create_account", fmt.Errorf("%w: %s", ErrDuplicateAccount, accountID))
	}
	l.accounts[accountID] = &model.Account{
		ID:      accountID,
		Balance: initialBalance,
		Opening: initialBalance,
		Status:  model.StatusActive,
	}
	return nil
}

// Balance returns the balance of an active or closed account.
func (l *Ledger) Balance(accountID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[accountID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, accountID)
	}
	return a.Balance, nil
}

// Account returns a copy of the account, including its status.
func (l *Ledger) Account(accountID string) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[accountID]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrNotFound, accountID)
	}
	return *a, nil
}

// Accounts returns copies of every account, active and closed, sorted by id.
func (l *Ledger) Accounts() []model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accountsLocked()
}

// Deposit credits amount to an active account and returns the new balance.
func (l *Ledger) Deposit(accountID string, amount, ts int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.activeAccount(accountID)
	if err != nil {
		return 0, l.reject("deposit", err)
	}
	if amount <= 0 {
		return 0, l.reject("deposit", ErrBadAmount)
	}

	a.Balance += amount
	l.records = append(l.records, model.Deposit{Account: accountID, Amount: amount, Timestamp: ts})
	return a.Balance, nil
}

// Transfer moves amount between two active accounts and returns the sender's
// new balance. Both sides are applied together or not at all.
func (l *Ledger) Transfer(from, to string, amount, ts int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal, err := l.transfer(from, to, amount, ts)
	if err != nil {
		return 0, l.reject("transfer", err)
	}
	return bal, nil
}

// Records returns the transaction log in append order.
func (l *Ledger) Records() []model.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Snapshot is a consistent copy of the whole ledger state.
type Snapshot struct {
	Accounts []model.Account
	Pending  []model.Scheduled
	Records  []model.Record
}

// Snapshot copies accounts, pending transfers and the log under one lock.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Accounts: l.accountsLocked(),
		Pending:  l.pendingLocked(),
		Records:  slices.Clone(l.records),
	}
}

func (l *Ledger) transfer(from, to string, amount, ts int64) (int64, error) {
	src, err := l.activeAccount(from)
	if err != nil {
		return 0, err
	}
	dst, err := l.activeAccount(to)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrBadAmount
	}
	if src.Balance < amount {
		return 0, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, src.Balance, amount)
	}

	src.Balance -= amount
	dst.Balance += amount
	l.records = append(l.records, model.Transfer{From: from, To: to, Amount: amount, Timestamp: ts})
	return src.Balance, nil
}

func (l *Ledger) activeAccount(accountID string) (*model.Account, error) {
	a, ok := l.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, accountID)
	}
	if !a.Active() {
		return nil, fmt.Errorf("%w: %s", ErrAccountClosed, accountID)
	}
	return a, nil
}

func (l *Ledger) accountsLocked() []model.Account {
	out := make([]model.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, *a)
	}
	slices.SortFunc(out, func(x, y model.Account) int {
		return strings.Compare(x.ID, y.ID)
	})
	return out
}

func (l *Ledger) reject(op string, err error) error {
	l.log.WithFields(logrus.Fields{
		"op":     op,
		"reason": err.Error(),
	}).Debug("ledger operation rejected")
	return err
}
