// Package config provides the Config struct and loader for .champ.yaml
// project-level configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth — New() references them and no other code should duplicate them.
const (
	DefaultRegistryURI = "./registry"
	DefaultStrategy    = "alias"

	DefaultMinAccuracy = 0.85
	DefaultMinF1       = 0.80

	DefaultDataDir     = "data"
	DefaultTestSize    = 0.2
	DefaultSeed        = 42
	DefaultLabelColumn = "target"

	DefaultServePort        = 8000
	DefaultReloadTimeoutSec = 5

	DefaultResultsDir = "results"
)

// RegistryConfig holds registry connection settings.
type RegistryConfig struct {
	URI      string `yaml:"uri,omitempty"`
	Strategy string `yaml:"strategy,omitempty"`
}

// GatesConfig holds the absolute promotion thresholds.
type GatesConfig struct {
	MinAccuracy *float64 `yaml:"min_accuracy,omitempty"`
	MinF1       *float64 `yaml:"min_f1,omitempty"`
}

// DataConfig holds dataset preparation settings.
type DataConfig struct {
	Dir         string   `yaml:"dir,omitempty"`
	TestSize    *float64 `yaml:"test_size,omitempty"`
	Seed        *int64   `yaml:"seed,omitempty"`
	LabelColumn string   `yaml:"label_column,omitempty"`
}

// ServeConfig holds prediction server settings.
type ServeConfig struct {
	Port int `yaml:"port,omitempty"`
}

// ReloadConfig holds reload notification settings.
type ReloadConfig struct {
	URL        string `yaml:"url,omitempty"`
	Token      string `yaml:"token,omitempty"`
	TimeoutSec int    `yaml:"timeout,omitempty"`
}

// Config is the top-level configuration loaded from .champ.yaml.
type Config struct {
	Model    string         `yaml:"model,omitempty"`
	Registry RegistryConfig `yaml:"registry,omitempty"`
	Gates    GatesConfig    `yaml:"gates,omitempty"`
	Data     DataConfig     `yaml:"data,omitempty"`
	Serve    ServeConfig    `yaml:"serve,omitempty"`
	Reload   ReloadConfig   `yaml:"reload,omitempty"`
	Results  string         `yaml:"results,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Registry: RegistryConfig{
			URI:      DefaultRegistryURI,
			Strategy: DefaultStrategy,
		},
		Gates: GatesConfig{
			MinAccuracy: float64Ptr(DefaultMinAccuracy),
			MinF1:       float64Ptr(DefaultMinF1),
		},
		Data: DataConfig{
			Dir:         DefaultDataDir,
			TestSize:    float64Ptr(DefaultTestSize),
			Seed:        int64Ptr(DefaultSeed),
			LabelColumn: DefaultLabelColumn,
		},
		Serve: ServeConfig{
			Port: DefaultServePort,
		},
		Reload: ReloadConfig{
			TimeoutSec: DefaultReloadTimeoutSec,
		},
		Results: DefaultResultsDir,
	}
}

// Load finds .champ.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults, and applies
// CHAMP_* environment overrides on top.
// If no config file is found, returns defaults (plus env) with a nil
// error. Real I/O errors (e.g. permission denied) are returned.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("loading .champ.yaml: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .champ.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	applyEnv(cfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .champ.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".champ.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	if src.Model != "" {
		dst.Model = src.Model
	}

	if src.Registry.URI != "" {
		dst.Registry.URI = src.Registry.URI
	}
	if src.Registry.Strategy != "" {
		dst.Registry.Strategy = src.Registry.Strategy
	}

	if src.Gates.MinAccuracy != nil {
		dst.Gates.MinAccuracy = src.Gates.MinAccuracy
	}
	if src.Gates.MinF1 != nil {
		dst.Gates.MinF1 = src.Gates.MinF1
	}

	if src.Data.Dir != "" {
		dst.Data.Dir = src.Data.Dir
	}
	if src.Data.TestSize != nil {
		dst.Data.TestSize = src.Data.TestSize
	}
	if src.Data.Seed != nil {
		dst.Data.Seed = src.Data.Seed
	}
	if src.Data.LabelColumn != "" {
		dst.Data.LabelColumn = src.Data.LabelColumn
	}

	if src.Serve.Port != 0 {
		dst.Serve.Port = src.Serve.Port
	}

	if src.Reload.URL != "" {
		dst.Reload.URL = src.Reload.URL
	}
	if src.Reload.Token != "" {
		dst.Reload.Token = src.Reload.Token
	}
	if src.Reload.TimeoutSec != 0 {
		dst.Reload.TimeoutSec = src.Reload.TimeoutSec
	}

	if src.Results != "" {
		dst.Results = src.Results
	}
}

// applyEnv overlays CHAMP_* environment variables, which outrank both
// defaults and the config file so CI can steer runs without editing
// checked-in config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CHAMP_REGISTRY_URI"); v != "" {
		cfg.Registry.URI = v
	}
	if v := os.Getenv("CHAMP_MODEL_NAME"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CHAMP_MIN_ACCURACY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gates.MinAccuracy = float64Ptr(f)
		}
	}
	if v := os.Getenv("CHAMP_MIN_F1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gates.MinF1 = float64Ptr(f)
		}
	}
	if v := os.Getenv("CHAMP_RELOAD_URL"); v != "" {
		cfg.Reload.URL = v
	}
	if v := os.Getenv("CHAMP_RELOAD_TOKEN"); v != "" {
		cfg.Reload.Token = v
	}
}

func float64Ptr(f float64) *float64 { return &f }
func int64Ptr(i int64) *int64       { return &i }
