package ledger

import "errors"

// Business-rule failures. Every fallible Ledger method returns one of these
// (possibly wrapped with the offending id); none of them is fatal.
var (
	ErrInvalidID         = errors.New("account id must be non-empty")
	ErrDuplicateAccount  = errors.New("account id already used")
	ErrNotFound          = errors.New("account not found")
	ErrAccountClosed     = errors.New("account is closed")
	ErrBadAmount         = errors.New("amount must be > 0")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidWindow     = errors.New("window start after end")
	ErrInvalidK          = errors.New("k must be > 0")
	ErrSelfMerge         = errors.New("merge accounts must be distinct")
	ErrMergeTargetExists = errors.New("merge target id already used")
	ErrScheduleNotFound  = errors.New("scheduled transfer not found")
)
