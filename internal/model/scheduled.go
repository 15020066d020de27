package model

// Scheduled is a pending transfer waiting for a sweep to reach ExecuteAt.
// From and To are rewritten in place when a merge closes either account.
type Scheduled struct {
	ID        string
	Seq       int
	From      string
	To        string
	Amount    int64
	ExecuteAt int64
}

// Before orders pending transfers by execution time, then creation order.
func (s Scheduled) Before(other Scheduled) bool {
	if s.ExecuteAt != other.ExecuteAt {
		return s.ExecuteAt < other.ExecuteAt
	}
	return s.Seq < other.Seq
}
