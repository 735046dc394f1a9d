package models

// Metrics is the fixed metric set computed for a scored model. ROCAUCMacro
// is best-effort: nil when the model exposes no probability output or the
// holdout has fewer than two represented classes.
type Metrics struct {
	Accuracy       float64  `json:"accuracy"`
	PrecisionMacro float64  `json:"precision_macro"`
	RecallMacro    float64  `json:"recall_macro"`
	F1Macro        float64  `json:"f1_macro"`
	ROCAUCMacro    *float64 `json:"roc_auc_macro,omitempty"`
}

// Flat returns the metrics as a flat key/value report, the shape written to
// metrics.json and attached to audit records. The AUC key is present only
// when the metric was computed.
func (m Metrics) Flat() map[string]float64 {
	out := map[string]float64{
		"accuracy":        m.Accuracy,
		"precision_macro": m.PrecisionMacro,
		"recall_macro":    m.RecallMacro,
		"f1_macro":        m.F1Macro,
	}
	if m.ROCAUCMacro != nil {
		out["roc_auc_macro"] = *m.ROCAUCMacro
	}
	return out
}

// GateThresholds are the absolute quality gates a candidate must clear
// regardless of the champion. Supplied externally, immutable per run.
type GateThresholds struct {
	MinAccuracy float64 `json:"min_accuracy" yaml:"min_accuracy"`
	MinF1       float64 `json:"min_f1" yaml:"min_f1"`
}
