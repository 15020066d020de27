package model

// RecordKind names a transaction log entry type.
type RecordKind string

const (
	KindDeposit  RecordKind = "deposit"
	KindTransfer RecordKind = "transfer"
	KindMerge    RecordKind = "merge"
)

// Record is an immutable transaction log entry. The set of implementations is
// closed: Deposit, Transfer and Merge.
type Record interface {
	Kind() RecordKind
	Time() int64
	// Mentions reports whether the record references the account id in any role.
	Mentions(id string) bool
	isRecord()
}

// Deposit credits Amount to Account.
type Deposit struct {
	Account   string
	Amount    int64
	Timestamp int64
}

func (Deposit) Kind() RecordKind          { return KindDeposit }
func (d Deposit) Time() int64             { return d.Timestamp }
func (d Deposit) Mentions(id string) bool { return d.Account == id }
func (Deposit) isRecord()                 {}

// Transfer moves Amount from From to To.
type Transfer struct {
	From      string
	To        string
	Amount    int64
	Timestamp int64
}

func (Transfer) Kind() RecordKind          { return KindTransfer }
func (t Transfer) Time() int64             { return t.Timestamp }
func (t Transfer) Mentions(id string) bool { return t.From == id || t.To == id }
func (Transfer) isRecord()                 {}

// Merge closes A and B and opens Merged with their combined balance.
type Merge struct {
	A         string
	B         string
	Merged    string
	Timestamp int64
}

func (Merge) Kind() RecordKind { return KindMerge }
func (m Merge) Time() int64    { return m.Timestamp }

// Mentions only matches the merged id; the sources keep their own history.
func (m Merge) Mentions(id string) bool { return m.Merged == id }
func (Merge) isRecord()                 {}

// InWindow reports whether r falls within [start, end], inclusive.
func InWindow(r Record, start, end int64) bool {
	ts := r.Time()
	return ts >= start && ts <= end
}
