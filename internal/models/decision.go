package models

import "strings"

// Outcome is the verdict of a promotion run.
type Outcome string

const (
	OutcomePromote Outcome = "promote"
	OutcomeReject  Outcome = "reject"
	// OutcomeSkip means the candidate already holds the production pointer;
	// no comparison can change that.
	OutcomeSkip Outcome = "skip"
)

// Reason is a machine-readable code explaining a rejection.
type Reason string

const (
	ReasonFailedGates Reason = "failed_gates"
	ReasonNotBetter   Reason = "not_better_than_champion"
)

// PromotionDecision is the immutable result of applying the promotion
// policy. Reasons is empty unless Outcome is OutcomeReject.
type PromotionDecision struct {
	Outcome       Outcome  `json:"outcome"`
	Reasons       []Reason `json:"reasons,omitempty"`
	GatesOK       bool     `json:"gates_ok"`
	BetterOrEqual bool     `json:"better_or_equal"`
}

// ReasonString joins the reason codes for tagging the rejected version.
// Returns "unspecified" when no codes apply.
func (d PromotionDecision) ReasonString() string {
	if len(d.Reasons) == 0 {
		return "unspecified"
	}
	parts := make([]string, len(d.Reasons))
	for i, r := range d.Reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// HasReason reports whether the decision carries the given reason code.
func (d PromotionDecision) HasReason(r Reason) bool {
	for _, have := range d.Reasons {
		if have == r {
			return true
		}
	}
	return false
}
