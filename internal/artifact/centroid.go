package artifact

import (
	"encoding/json"
	"fmt"
	"math"
)

// NearestCentroid classifies each row as the class of the closest centroid
// (Euclidean). It exposes no probability output, so evaluations of centroid
// models omit ROC-AUC.
type NearestCentroid struct {
	Centroids [][]float64 `json:"centroids"`
}

func loadCentroid(raw []byte, m *Manifest) (*NearestCentroid, error) {
	var c NearestCentroid
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("artifact: parsing centroid weights: %w", err)
	}
	if len(c.Centroids) != m.Classes {
		return nil, fmt.Errorf("artifact: %d centroids, manifest declares %d classes", len(c.Centroids), m.Classes)
	}
	for i, row := range c.Centroids {
		if len(row) != len(m.Features) {
			return nil, fmt.Errorf("artifact: centroid %d has %d columns, manifest declares %d features", i, len(row), len(m.Features))
		}
	}
	return &c, nil
}

// Predict returns the class of the nearest centroid per row.
func (c *NearestCentroid) Predict(features [][]float64) ([]int, error) {
	preds := make([]int, len(features))
	for i, x := range features {
		if len(x) != len(c.Centroids[0]) {
			return nil, fmt.Errorf("artifact: input row %d has %d features, model expects %d", i, len(x), len(c.Centroids[0]))
		}
		best := 0
		bestDist := math.Inf(1)
		for k, centroid := range c.Centroids {
			var d float64
			for j, v := range x {
				diff := v - centroid[j]
				d += diff * diff
			}
			if d < bestDist {
				bestDist = d
				best = k
			}
		}
		preds[i] = best
	}
	return preds, nil
}
