// Package audit checks a ledger snapshot against the ledger's invariants.
package audit

import (
	"fmt"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// Rule names an invariant.
type Rule string

const (
	RuleNonNegative      Rule = "non-negative-balance"
	RuleConservation     Rule = "conservation"
	RuleClosedNotPending Rule = "closed-not-pending"
	RuleMergeClosesSrc   Rule = "merge-closes-sources"
	RuleKnownReferences  Rule = "known-references"
)

// Violation describes a single invariant violation.
type Violation struct {
	Rule        Rule
	Subject     string
	Description string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s [%s]: %s", v.Rule, v.Subject, v.Description)
}

// Check runs every rule over s and returns the violations found, in rule order.
func Check(s ledger.Snapshot) []Violation {
	var errs []Violation

	byID := make(map[string]model.Account, len(s.Accounts))
	for _, a := range s.Accounts {
		byID[a.ID] = a
	}

	for _, a := range s.Accounts {
		if a.Balance < 0 {
			errs = append(errs, Violation{
				Rule:        RuleNonNegative,
				Subject:     a.ID,
				Description: fmt.Sprintf("balance %d is negative", a.Balance),
			})
		}
	}

	// Active balances must equal opening balances plus deposits; transfers
	// and merges only move money around.
	var active, expected int64
	for _, a := range s.Accounts {
		expected += a.Opening
		if a.Active() {
			active += a.Balance
		}
	}
	for _, r := range s.Records {
		if d, ok := r.(model.Deposit); ok {
			expected += d.Amount
		}
	}
	if active != expected {
		errs = append(errs, Violation{
			Rule:        RuleConservation,
			Subject:     "ledger",
			Description: fmt.Sprintf("active balances sum to %d, openings plus deposits give %d", active, expected),
		})
	}

	for _, p := range s.Pending {
		for _, ref := range []string{p.From, p.To} {
			if a, ok := byID[ref]; ok && !a.Active() {
				errs = append(errs, Violation{
					Rule:        RuleClosedNotPending,
					Subject:     p.ID,
					Description: fmt.Sprintf("pending transfer references closed account %s", ref),
				})
			}
		}
	}

	for _, r := range s.Records {
		m, ok := r.(model.Merge)
		if !ok {
			continue
		}
		for _, src := range []string{m.A, m.B} {
			if a, ok := byID[src]; ok && a.Active() {
				errs = append(errs, Violation{
					Rule:        RuleMergeClosesSrc,
					Subject:     src,
					Description: fmt.Sprintf("merged into %s but still active", m.Merged),
				})
			}
		}
		if _, ok := byID[m.Merged]; !ok {
			errs = append(errs, Violation{
				Rule:        RuleMergeClosesSrc,
				Subject:     m.Merged,
				Description: "merge target does not exist",
			})
		}
	}

	for i, r := range s.Records {
		for _, ref := range references(r) {
			if _, ok := byID[ref]; !ok {
				errs = append(errs, Violation{
					Rule:        RuleKnownReferences,
					Subject:     fmt.Sprintf("record %d", i),
					Description: fmt.Sprintf("%s references unknown account %q", r.Kind(), ref),
				})
			}
		}
	}

	return errs
}

func references(r model.Record) []string {
	switch r := r.(type) {
	case model.Deposit:
		return []string{r.Account}
	case model.Transfer:
		return []string{r.From, r.To}
	case model.Merge:
		return []string{r.A, r.B, r.Merged}
	}
	return nil
}
