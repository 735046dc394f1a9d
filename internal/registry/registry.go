// Package registry abstracts the model registry: listing versions,
// resolving the current champion, loading model artifacts, and applying
// promotion decisions.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/champlabs/champ/internal/evaluate"
	"github.com/champlabs/champ/internal/models"
)

//go:generate go tool mockgen -source registry.go -destination mock_client.go -package registry

// ProductionAlias is the alias name that marks the champion under the
// alias strategy.
const ProductionAlias = "production"

// Strategy selects how the champion version is resolved.
type Strategy string

const (
	// StrategyAlias resolves the champion via the "production" alias.
	StrategyAlias Strategy = "alias"
	// StrategyStage resolves the champion via the Production stage tag.
	StrategyStage Strategy = "stage"
)

// ParseStrategy validates a strategy name from config or flags.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAlias, StrategyStage:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("registry: unknown champion strategy %q (want %q or %q)", s, StrategyAlias, StrategyStage)
	}
}

var (
	// ErrNoVersions indicates the model has no registered versions at all.
	ErrNoVersions = errors.New("registry: model has no versions")

	// ErrRegistryUnavailable wraps transport-level failures reaching the
	// registry, as opposed to the registry answering with an error.
	ErrRegistryUnavailable = errors.New("registry: unavailable")
)

// ModelLoadError indicates a version exists in the registry but its
// artifact could not be fetched or instantiated.
type ModelLoadError struct {
	Name    string
	Version int
	Err     error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("registry: loading %s version %d: %v", e.Name, e.Version, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// Client is the registry surface the promotion flow depends on.
// Implementations exist for a local filesystem registry and a remote REST
// registry; tests use the generated mock.
type Client interface {
	// ListVersions returns every registered version of the model, in no
	// particular order. An empty slice with a nil error means the model
	// exists but has no versions.
	ListVersions(ctx context.Context, name string) ([]models.ModelVersion, error)

	// ResolveChampion returns the current champion version, or nil when no
	// champion is designated. Resolution follows the client's configured
	// Strategy.
	ResolveChampion(ctx context.Context, name string) (*models.ModelVersion, error)

	// LoadPredictor fetches the artifact for a version and instantiates a
	// predictor from it.
	LoadPredictor(ctx context.Context, name string, version int) (evaluate.Predictor, error)

	// Promote designates version as the new champion, demoting any
	// previous champion.
	Promote(ctx context.Context, name string, version int) error

	// Tag sets a metadata tag on a version.
	Tag(ctx context.Context, name string, version int, key, value string) error
}
