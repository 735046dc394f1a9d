// Package wizard collects project settings interactively for champ init.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/champlabs/champ/internal/config"
	"github.com/champlabs/champ/internal/registry"
)

// ProjectSpec holds all fields collected during the interactive wizard.
type ProjectSpec struct {
	Model       string
	RegistryURI string
	Strategy    registry.Strategy
	MinAccuracy float64
	MinF1       float64
}

// RunProjectWizard runs an interactive huh form to collect project
// settings.
func RunProjectWizard(in io.Reader, out io.Writer) (*ProjectSpec, error) {
	var (
		model          string
		registryURI    = config.DefaultRegistryURI
		strategy       = config.DefaultStrategy
		minAccuracyRaw = strconv.FormatFloat(config.DefaultMinAccuracy, 'f', -1, 64)
		minF1Raw       = strconv.FormatFloat(config.DefaultMinF1, 'f', -1, 64)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model name").
				Description("The registered model this project promotes").
				Placeholder("iris-classifier").
				Value(&model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Registry URI").
				Description("A directory path, or http(s) URL of a tracking server").
				Value(&registryURI),
			huh.NewSelect[string]().
				Title("Champion resolution").
				Description("How the current production version is identified").
				Options(
					huh.NewOption("production alias", string(registry.StrategyAlias)),
					huh.NewOption("Production stage", string(registry.StrategyStage)),
				).
				Value(&strategy),
			huh.NewInput().
				Title("Minimum accuracy").
				Description("Candidates below this are rejected outright").
				Value(&minAccuracyRaw).
				Validate(validateFraction),
			huh.NewInput().
				Title("Minimum macro F1").
				Value(&minF1Raw).
				Validate(validateFraction),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	minAccuracy, _ := strconv.ParseFloat(strings.TrimSpace(minAccuracyRaw), 64)
	minF1, _ := strconv.ParseFloat(strings.TrimSpace(minF1Raw), 64)

	return &ProjectSpec{
		Model:       strings.TrimSpace(model),
		RegistryURI: strings.TrimSpace(registryURI),
		Strategy:    registry.Strategy(strategy),
		MinAccuracy: minAccuracy,
		MinF1:       minF1,
	}, nil
}

func validateFraction(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

// ToConfig converts the collected spec into a Config ready to marshal to
// .champ.yaml.
func (s *ProjectSpec) ToConfig() *config.Config {
	cfg := config.New()
	cfg.Model = s.Model
	cfg.Registry.URI = s.RegistryURI
	cfg.Registry.Strategy = string(s.Strategy)
	minAccuracy := s.MinAccuracy
	minF1 := s.MinF1
	cfg.Gates.MinAccuracy = &minAccuracy
	cfg.Gates.MinF1 = &minF1
	return cfg
}
