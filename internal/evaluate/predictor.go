package evaluate

// Predictor is the minimal capability a loaded model must expose: class
// labels for a batch of feature rows.
type Predictor interface {
	Predict(features [][]float64) ([]int, error)
}

// ProbabilityPredictor is the optional capability for models that can emit
// per-class probabilities. Callers must check for it explicitly (type
// assertion), never by attempting a call and recovering.
type ProbabilityPredictor interface {
	PredictProba(features [][]float64) ([][]float64, error)
}
