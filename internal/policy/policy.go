// Package policy holds the promotion decision logic. Decide is pure: it
// touches no registry, no clock, no I/O, so the rules are testable in
// isolation and auditable from the inputs alone.
package policy

import "github.com/champlabs/champ/internal/models"

// Decide applies the promotion rules to a candidate's metrics.
//
// The candidate must clear every absolute gate AND match or beat the
// champion on both accuracy and macro F1. A tie on both counts promotes:
// an equally good newer model wins, keeping rollout moving when retraining
// reproduces the same scores. When champion is nil there is no incumbent
// to beat and only the gates apply.
func Decide(candidate models.Metrics, champion *models.Metrics, gates models.GateThresholds) models.PromotionDecision {
	d := models.PromotionDecision{
		GatesOK:       candidate.Accuracy >= gates.MinAccuracy && candidate.F1Macro >= gates.MinF1,
		BetterOrEqual: true,
	}
	if champion != nil {
		d.BetterOrEqual = candidate.Accuracy >= champion.Accuracy && candidate.F1Macro >= champion.F1Macro
	}

	if !d.GatesOK {
		d.Reasons = append(d.Reasons, models.ReasonFailedGates)
	}
	if !d.BetterOrEqual {
		d.Reasons = append(d.Reasons, models.ReasonNotBetter)
	}

	if len(d.Reasons) == 0 {
		d.Outcome = models.OutcomePromote
	} else {
		d.Outcome = models.OutcomeReject
	}
	return d
}
