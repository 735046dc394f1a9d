package models

import "time"

// AuditRecord captures one promotion run: the versions compared, the
// metrics behind the comparison, and the decision. Records are append-only
// and written before any registry mutation, so a crash mid-run always
// leaves a trail explaining intent.
type AuditRecord struct {
	ModelName        string            `json:"model_name"`
	CandidateVersion int               `json:"candidate_version"`
	ChampionVersion  *int              `json:"champion_version,omitempty"`
	Decision         PromotionDecision `json:"decision"`
	CandidateMetrics Metrics           `json:"candidate_metrics"`
	ChampionMetrics  *Metrics          `json:"champion_metrics,omitempty"`
	RecordedAt       time.Time         `json:"recorded_at"`
}
