package model

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive AccountStatus = "active"
	StatusClosed AccountStatus = "closed"
)

// Account is one row of the ledger's balance table.
type Account struct {
	ID      string
	Balance int64
	Opening int64 // balance given at creation; zero for merge results
	Status  AccountStatus
}

// Active reports whether the account still accepts deposits and transfers.
func (a Account) Active() bool {
	return a.Status == StatusActive
}
