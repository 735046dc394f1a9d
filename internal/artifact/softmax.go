package artifact

import (
	"encoding/json"
	"fmt"
	"math"
)

// SoftmaxClassifier is a linear multiclass classifier: logits = Wx + b,
// probabilities via softmax. Weights is classes x features.
type SoftmaxClassifier struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

func loadSoftmax(raw []byte, m *Manifest) (*SoftmaxClassifier, error) {
	var c SoftmaxClassifier
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("artifact: parsing softmax weights: %w", err)
	}
	if len(c.Weights) != m.Classes {
		return nil, fmt.Errorf("artifact: softmax has %d weight rows, manifest declares %d classes", len(c.Weights), m.Classes)
	}
	if len(c.Bias) != m.Classes {
		return nil, fmt.Errorf("artifact: softmax has %d bias terms, manifest declares %d classes", len(c.Bias), m.Classes)
	}
	for i, row := range c.Weights {
		if len(row) != len(m.Features) {
			return nil, fmt.Errorf("artifact: softmax weight row %d has %d columns, manifest declares %d features", i, len(row), len(m.Features))
		}
	}
	return &c, nil
}

// Predict returns the argmax class per row.
func (c *SoftmaxClassifier) Predict(features [][]float64) ([]int, error) {
	proba, err := c.PredictProba(features)
	if err != nil {
		return nil, err
	}
	preds := make([]int, len(proba))
	for i, row := range proba {
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		preds[i] = best
	}
	return preds, nil
}

// PredictProba returns one probability row per input row, columns indexed
// by class.
func (c *SoftmaxClassifier) PredictProba(features [][]float64) ([][]float64, error) {
	out := make([][]float64, len(features))
	for i, x := range features {
		if len(x) != len(c.Weights[0]) {
			return nil, fmt.Errorf("artifact: input row %d has %d features, model expects %d", i, len(x), len(c.Weights[0]))
		}
		logits := make([]float64, len(c.Weights))
		for k, w := range c.Weights {
			z := c.Bias[k]
			for j, v := range x {
				z += w[j] * v
			}
			logits[k] = z
		}
		out[i] = softmax(logits)
	}
	return out, nil
}

// softmax is computed against the max logit for numeric stability.
func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, z := range logits[1:] {
		if z > max {
			max = z
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		probs[i] = math.Exp(z - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
