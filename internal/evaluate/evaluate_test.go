package evaluate

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// labelPredictor returns fixed class labels and exposes no probabilities.
type labelPredictor struct {
	preds []int
	err   error
}

func (p *labelPredictor) Predict(features [][]float64) ([]int, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.preds, nil
}

// probaPredictor returns fixed probability rows.
type probaPredictor struct {
	proba [][]float64
	err   error
}

func (p *probaPredictor) Predict(features [][]float64) ([]int, error) {
	rows, err := p.PredictProba(features)
	if err != nil {
		return nil, err
	}
	return argmaxRows(rows), nil
}

func (p *probaPredictor) PredictProba(features [][]float64) ([][]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.proba, nil
}

func fourRows() [][]float64 {
	return [][]float64{{0}, {1}, {2}, {3}}
}

func TestScorePerfect(t *testing.T) {
	p := &labelPredictor{preds: []int{0, 0, 1, 1}}
	m, err := Score(p, fourRows(), []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for name, got := range map[string]float64{
		"accuracy":  m.Accuracy,
		"precision": m.PrecisionMacro,
		"recall":    m.RecallMacro,
		"f1":        m.F1Macro,
	} {
		if !approxEqual(got, 1.0) {
			t.Errorf("%s = %f, want 1.0", name, got)
		}
	}
	if m.ROCAUCMacro != nil {
		t.Error("AUC should be nil without probability output")
	}
}

func TestScoreKnownConfusion(t *testing.T) {
	// labels [0,0,1,1], preds [0,1,1,1]:
	// class 0: precision 1.0, recall 0.5; class 1: precision 2/3, recall 1.0
	p := &labelPredictor{preds: []int{0, 1, 1, 1}}
	m, err := Score(p, fourRows(), []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !approxEqual(m.Accuracy, 0.75) {
		t.Errorf("accuracy = %f, want 0.75", m.Accuracy)
	}
	if !approxEqual(m.PrecisionMacro, (1.0+2.0/3.0)/2) {
		t.Errorf("precision_macro = %f", m.PrecisionMacro)
	}
	if !approxEqual(m.RecallMacro, 0.75) {
		t.Errorf("recall_macro = %f, want 0.75", m.RecallMacro)
	}
	wantF1 := (2*1.0*0.5/1.5 + 2*(2.0/3.0)*1.0/(2.0/3.0+1.0)) / 2
	if !approxEqual(m.F1Macro, wantF1) {
		t.Errorf("f1_macro = %f, want %f", m.F1Macro, wantF1)
	}
}

func TestScoreArgmaxFromProbabilities(t *testing.T) {
	p := &probaPredictor{proba: [][]float64{
		{0.9, 0.1},
		{0.6, 0.4},
		{0.2, 0.8},
		{0.3, 0.7},
	}}
	m, err := Score(p, fourRows(), []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !approxEqual(m.Accuracy, 1.0) {
		t.Errorf("accuracy = %f, want 1.0", m.Accuracy)
	}
	if m.ROCAUCMacro == nil {
		t.Fatal("AUC should be present with probability output and 2 classes")
	}
	if !approxEqual(*m.ROCAUCMacro, 1.0) {
		t.Errorf("roc_auc_macro = %f, want 1.0", *m.ROCAUCMacro)
	}
}

func TestScoreAUCOmittedForSingleClass(t *testing.T) {
	p := &probaPredictor{proba: [][]float64{{0.9, 0.1}, {0.8, 0.2}}}
	m, err := Score(p, [][]float64{{0}, {1}}, []int{0, 0})
	if err != nil {
		t.Fatalf("single-class holdout must not fail the evaluation: %v", err)
	}
	if m.ROCAUCMacro != nil {
		t.Error("AUC should be omitted for a single-class holdout")
	}
	if !approxEqual(m.Accuracy, 1.0) {
		t.Errorf("accuracy = %f, want 1.0", m.Accuracy)
	}
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		p        Predictor
		features [][]float64
		labels   []int
	}{
		{"nil predictor", nil, fourRows(), []int{0, 0, 1, 1}},
		{"empty holdout", &labelPredictor{}, nil, nil},
		{"length mismatch", &labelPredictor{preds: []int{0}}, fourRows(), []int{0, 1}},
		{"predict failure", &labelPredictor{err: errors.New("corrupt")}, fourRows(), []int{0, 0, 1, 1}},
		{"proba failure", &probaPredictor{err: errors.New("corrupt")}, fourRows(), []int{0, 0, 1, 1}},
		{"short prediction", &labelPredictor{preds: []int{0, 1}}, fourRows(), []int{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.p, tt.features, tt.labels)
			if err == nil {
				t.Fatal("expected error")
			}
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Errorf("error %v is not an EvaluationError", err)
			}
		})
	}
}
