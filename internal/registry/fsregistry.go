package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/champlabs/champ/internal/artifact"
	"github.com/champlabs/champ/internal/evaluate"
	"github.com/champlabs/champ/internal/models"
)

// fsState is the on-disk registry state for one model, stored at
// <root>/<model>/state.json. Artifacts live under
// <root>/<model>/versions/<N>/.
type fsState struct {
	Versions []models.ModelVersion `json:"versions"`
	Aliases  map[string]int        `json:"aliases"`
}

// FSRegistry is a local single-process registry rooted at a directory.
// State writes go through a temp file and rename, so a crashed run never
// leaves a half-written state file.
type FSRegistry struct {
	root     string
	strategy Strategy
}

var _ Client = (*FSRegistry)(nil)

// NewFSRegistry opens (or creates) a filesystem registry at root.
func NewFSRegistry(root string, strategy Strategy) (*FSRegistry, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("registry: creating %s: %w", root, err)
	}
	return &FSRegistry{root: root, strategy: strategy}, nil
}

func (r *FSRegistry) modelDir(name string) string {
	return filepath.Join(r.root, name)
}

func (r *FSRegistry) statePath(name string) string {
	return filepath.Join(r.modelDir(name), "state.json")
}

// VersionDir returns the artifact directory for a version. The directory
// is not guaranteed to exist.
func (r *FSRegistry) VersionDir(name string, version int) string {
	return filepath.Join(r.modelDir(name), "versions", strconv.Itoa(version))
}

func (r *FSRegistry) loadState(name string) (*fsState, error) {
	data, err := os.ReadFile(r.statePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return &fsState{Aliases: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: reading state for %s: %w", name, err)
	}
	var st fsState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("registry: parsing state for %s: %w", name, err)
	}
	if st.Aliases == nil {
		st.Aliases = map[string]int{}
	}
	return &st, nil
}

func (r *FSRegistry) saveState(name string, st *fsState) error {
	dir := r.modelDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("registry: creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: encoding state for %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("registry: writing state for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("registry: writing state for %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("registry: writing state for %s: %w", name, err)
	}
	return os.Rename(tmpName, r.statePath(name))
}

// CreateVersion registers the next version for a model and returns it
// together with its artifact directory, ready to receive manifest and
// weights files.
func (r *FSRegistry) CreateVersion(name string) (int, string, error) {
	st, err := r.loadState(name)
	if err != nil {
		return 0, "", err
	}
	next := 1
	for _, v := range st.Versions {
		if v.Version >= next {
			next = v.Version + 1
		}
	}
	dir := r.VersionDir(name, next)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", fmt.Errorf("registry: creating %s: %w", dir, err)
	}
	st.Versions = append(st.Versions, models.ModelVersion{
		Name:    name,
		Version: next,
		Stage:   models.StageNone,
		Source:  dir,
		Tags:    map[string]string{},
	})
	if err := r.saveState(name, st); err != nil {
		return 0, "", err
	}
	return next, dir, nil
}

// ListVersions implements Client.
func (r *FSRegistry) ListVersions(_ context.Context, name string) ([]models.ModelVersion, error) {
	st, err := r.loadState(name)
	if err != nil {
		return nil, err
	}
	return st.Versions, nil
}

// ResolveChampion implements Client.
func (r *FSRegistry) ResolveChampion(_ context.Context, name string) (*models.ModelVersion, error) {
	st, err := r.loadState(name)
	if err != nil {
		return nil, err
	}
	switch r.strategy {
	case StrategyAlias:
		v, ok := st.Aliases[ProductionAlias]
		if !ok {
			return nil, nil
		}
		for i := range st.Versions {
			if st.Versions[i].Version == v {
				return &st.Versions[i], nil
			}
		}
		return nil, fmt.Errorf("registry: alias %q points at missing version %d of %s", ProductionAlias, v, name)
	case StrategyStage:
		for i := range st.Versions {
			if st.Versions[i].Stage == models.StageProduction {
				return &st.Versions[i], nil
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("registry: unknown champion strategy %q", r.strategy)
	}
}

// LoadPredictor implements Client.
func (r *FSRegistry) LoadPredictor(_ context.Context, name string, version int) (evaluate.Predictor, error) {
	p, _, err := artifact.Load(r.VersionDir(name, version))
	if err != nil {
		return nil, &ModelLoadError{Name: name, Version: version, Err: err}
	}
	return p, nil
}

// Promote implements Client. It moves the production alias and stage to
// version in one state write, archiving the previous champion.
func (r *FSRegistry) Promote(_ context.Context, name string, version int) error {
	st, err := r.loadState(name)
	if err != nil {
		return err
	}
	found := false
	for i := range st.Versions {
		switch {
		case st.Versions[i].Version == version:
			st.Versions[i].Stage = models.StageProduction
			found = true
		case st.Versions[i].Stage == models.StageProduction:
			st.Versions[i].Stage = models.StageArchived
		}
	}
	if !found {
		return fmt.Errorf("registry: %s has no version %d", name, version)
	}
	st.Aliases[ProductionAlias] = version
	return r.saveState(name, st)
}

// Tag implements Client.
func (r *FSRegistry) Tag(_ context.Context, name string, version int, key, value string) error {
	st, err := r.loadState(name)
	if err != nil {
		return err
	}
	for i := range st.Versions {
		if st.Versions[i].Version == version {
			if st.Versions[i].Tags == nil {
				st.Versions[i].Tags = map[string]string{}
			}
			st.Versions[i].Tags[key] = value
			return r.saveState(name, st)
		}
	}
	return fmt.Errorf("registry: %s has no version %d", name, version)
}
