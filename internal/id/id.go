package id

import (
	"fmt"
	"strconv"
	"strings"
)

// schedulePrefix marks ids handed out by ScheduleTransfer.
const schedulePrefix = "s"

// FormatScheduleID returns a schedule ID like "s0", "s1", ...
func FormatScheduleID(seq int) string {
	return schedulePrefix + strconv.Itoa(seq)
}

// ParseScheduleID parses "s12" into 12.
func ParseScheduleID(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, schedulePrefix)
	if !ok || rest == "" {
		return 0, fmt.Errorf("invalid schedule ID format: %q", id)
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in schedule ID %q: %w", id, err)
	}
	if seq < 0 {
		return 0, fmt.Errorf("negative sequence in schedule ID %q", id)
	}
	return seq, nil
}

// Sequence hands out monotonically increasing integers starting at zero.
// It is not safe for concurrent use; the owner serializes access.
type Sequence struct {
	next int
}

// Next returns the current value and advances the sequence.
func (s *Sequence) Next() int {
	n := s.next
	s.next++
	return n
}
