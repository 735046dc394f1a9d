package models

// Stage markers a registry can attach to a version. Alias-based registries
// only use these for display; stage-based registries treat StageProduction
// as the production pointer.
const (
	StageNone       = "None"
	StageProduction = "Production"
	StageArchived   = "Archived"
)

// ModelVersion is one registered version of a named model. Versions are
// assigned by the registry and strictly increase per model name.
type ModelVersion struct {
	Name    string            `json:"name"`
	Version int               `json:"version"`
	Stage   string            `json:"stage,omitempty"`
	Source  string            `json:"source,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// MaxVersion returns the version with the highest version number, which is
// the promotion candidate by definition. Returns nil for an empty slice.
func MaxVersion(versions []ModelVersion) *ModelVersion {
	var max *ModelVersion
	for i := range versions {
		if max == nil || versions[i].Version > max.Version {
			max = &versions[i]
		}
	}
	return max
}
