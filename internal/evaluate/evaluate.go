// Package evaluate scores a model's predictions against labeled holdout
// data, producing the fixed metric set used by the promotion policy.
package evaluate

import (
	"fmt"

	"github.com/champlabs/champ/internal/models"
)

// EvaluationError indicates that predictions and labels could not be
// aligned or that the model capability is absent or failing. The four core
// metrics are mandatory; an EvaluationError aborts the whole evaluation.
type EvaluationError struct {
	Op  string
	Err error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evaluate: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("evaluate: %s", e.Op)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func evalErrorf(op string, args ...any) error {
	return &EvaluationError{Op: fmt.Sprintf(op, args...)}
}

// Score evaluates p against the holdout features and labels.
//
// When p exposes per-class probabilities the class prediction is the argmax
// of each probability row and macro one-vs-rest ROC-AUC is attempted;
// otherwise direct label output is used and the AUC field stays nil. AUC is
// best-effort: it is omitted (never an error) when fewer than two classes
// are represented in the labels or a label falls outside the probability
// columns. Accuracy and macro precision/recall/F1 are always computed.
func Score(p Predictor, features [][]float64, labels []int) (models.Metrics, error) {
	if p == nil {
		return models.Metrics{}, evalErrorf("no predictor")
	}
	if len(features) == 0 {
		return models.Metrics{}, evalErrorf("empty holdout")
	}
	if len(features) != len(labels) {
		return models.Metrics{}, evalErrorf("%d feature rows but %d labels", len(features), len(labels))
	}

	var (
		preds []int
		proba [][]float64
	)
	if pp, ok := p.(ProbabilityPredictor); ok {
		rows, err := pp.PredictProba(features)
		if err != nil {
			return models.Metrics{}, &EvaluationError{Op: "predict_proba", Err: err}
		}
		proba = rows
		preds = argmaxRows(rows)
	} else {
		out, err := p.Predict(features)
		if err != nil {
			return models.Metrics{}, &EvaluationError{Op: "predict", Err: err}
		}
		preds = out
	}
	if len(preds) != len(labels) {
		return models.Metrics{}, evalErrorf("model returned %d predictions for %d labels", len(preds), len(labels))
	}

	m := confusionMetrics(preds, labels)

	if proba != nil {
		if auc, ok := rocAUCMacroOVR(proba, labels); ok {
			m.ROCAUCMacro = &auc
		}
	}
	return m, nil
}

// argmaxRows selects the class with the highest probability per row.
func argmaxRows(rows [][]float64) []int {
	preds := make([]int, len(rows))
	for i, row := range rows {
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		preds[i] = best
	}
	return preds
}

// confusionMetrics computes accuracy and macro-averaged
// precision/recall/F1 from predictions and labels. Classes are the union
// of values seen in either slice; a class with no positive predictions
// contributes zero precision (and likewise for recall), matching the
// usual zero-division convention.
func confusionMetrics(preds, labels []int) models.Metrics {
	classes := map[int]struct{}{}
	for _, y := range labels {
		classes[y] = struct{}{}
	}
	for _, y := range preds {
		classes[y] = struct{}{}
	}

	correct := 0
	tp := map[int]int{}
	fp := map[int]int{}
	fn := map[int]int{}
	for i, y := range labels {
		if preds[i] == y {
			correct++
			tp[y]++
		} else {
			fp[preds[i]]++
			fn[y]++
		}
	}

	var precisionSum, recallSum, f1Sum float64
	for c := range classes {
		var precision, recall float64
		if tp[c]+fp[c] > 0 {
			precision = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			recall = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		precisionSum += precision
		recallSum += recall
		f1Sum += f1
	}

	n := float64(len(classes))
	return models.Metrics{
		Accuracy:       float64(correct) / float64(len(labels)),
		PrecisionMacro: precisionSum / n,
		RecallMacro:    recallSum / n,
		F1Macro:        f1Sum / n,
	}
}
