// Package artifact loads serialized classifier artifacts from disk.
//
// An artifact directory contains a manifest.json describing the model and a
// weights.json holding its parameters. Two kinds are supported: "softmax"
// (a linear classifier with per-class probability output) and "centroid"
// (nearest-centroid, class labels only).
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/champlabs/champ/internal/evaluate"
)

// Artifact kinds understood by Load.
const (
	KindSoftmax  = "softmax"
	KindCentroid = "centroid"
)

// Manifest file names inside an artifact directory.
const (
	ManifestFile = "manifest.json"
	WeightsFile  = "weights.json"
)

// Manifest describes a stored model artifact.
type Manifest struct {
	Name      string   `json:"name"`
	Version   int      `json:"version"`
	Kind      string   `json:"kind"`
	Classes   int      `json:"classes"`
	Features  []string `json:"features"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Load reads and validates the artifact in dir and returns a predictor for
// it. Softmax artifacts implement evaluate.ProbabilityPredictor; centroid
// artifacts do not.
func Load(dir string) (evaluate.Predictor, *Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: reading manifest: %w", err)
	}
	if errs := ValidateManifestBytes(raw); len(errs) > 0 {
		return nil, nil, fmt.Errorf("artifact: invalid manifest in %s: %s", dir, strings.Join(errs, "; "))
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("artifact: parsing manifest: %w", err)
	}

	weights, err := os.ReadFile(filepath.Join(dir, WeightsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: reading weights: %w", err)
	}

	var p evaluate.Predictor
	switch m.Kind {
	case KindSoftmax:
		p, err = loadSoftmax(weights, &m)
	case KindCentroid:
		p, err = loadCentroid(weights, &m)
	default:
		// Unreachable while the schema enum and this switch agree.
		return nil, nil, fmt.Errorf("artifact: unknown kind %q", m.Kind)
	}
	if err != nil {
		return nil, nil, err
	}
	return p, &m, nil
}

// Save writes manifest and weights to dir, creating it if needed. The
// weights value must be a *SoftmaxClassifier or *NearestCentroid matching
// the manifest kind.
func Save(dir string, m *Manifest, weights any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: creating %s: %w", dir, err)
	}
	if err := writeJSON(filepath.Join(dir, ManifestFile), m); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, WeightsFile), weights)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifact: writing %s: %w", path, err)
	}
	return nil
}
