package models

import "testing"

func TestReasonString(t *testing.T) {
	tests := []struct {
		name    string
		reasons []Reason
		expect  string
	}{
		{"none", nil, "unspecified"},
		{"single", []Reason{ReasonFailedGates}, "failed_gates"},
		{"both", []Reason{ReasonFailedGates, ReasonNotBetter}, "failed_gates,not_better_than_champion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PromotionDecision{Outcome: OutcomeReject, Reasons: tt.reasons}
			if got := d.ReasonString(); got != tt.expect {
				t.Errorf("ReasonString() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestMaxVersion(t *testing.T) {
	if MaxVersion(nil) != nil {
		t.Fatal("MaxVersion(nil) should be nil")
	}
	vs := []ModelVersion{
		{Name: "m", Version: 2},
		{Name: "m", Version: 7},
		{Name: "m", Version: 5},
	}
	got := MaxVersion(vs)
	if got == nil || got.Version != 7 {
		t.Fatalf("MaxVersion = %+v, want version 7", got)
	}
}

func TestMetricsFlat(t *testing.T) {
	auc := 0.9
	m := Metrics{Accuracy: 0.95, PrecisionMacro: 0.94, RecallMacro: 0.93, F1Macro: 0.92, ROCAUCMacro: &auc}
	flat := m.Flat()
	if len(flat) != 5 {
		t.Fatalf("expected 5 keys, got %d", len(flat))
	}
	if flat["roc_auc_macro"] != 0.9 {
		t.Errorf("roc_auc_macro = %f, want 0.9", flat["roc_auc_macro"])
	}

	m.ROCAUCMacro = nil
	if _, ok := m.Flat()["roc_auc_macro"]; ok {
		t.Error("roc_auc_macro should be omitted when nil")
	}
}
