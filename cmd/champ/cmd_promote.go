package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/champlabs/champ/internal/audit"
	"github.com/champlabs/champ/internal/config"
	"github.com/champlabs/champ/internal/dataset"
	"github.com/champlabs/champ/internal/models"
	"github.com/champlabs/champ/internal/notify"
	"github.com/champlabs/champ/internal/promote"
	"github.com/champlabs/champ/internal/registry"
)

func newPromoteCommand() *cobra.Command {
	var (
		modelName string
		dataPath  string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Evaluate the newest model version and promote it if it qualifies",
		Long: `Evaluate the newest registered version of a model on the holdout dataset
and promote it to champion if it clears the quality gates and matches or
beats the current champion.

Every run writes an audit record before the registry is touched. With
--strict, a rejected candidate makes the command exit non-zero, which is
how CI pipelines fail a bad model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return promoteCommandE(cmd, modelName, dataPath, strict)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "Registered model name (defaults to config)")
	cmd.Flags().StringVar(&dataPath, "data", "", "Holdout CSV path (defaults to <data dir>/test.csv)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the candidate is rejected")

	return cmd
}

func promoteCommandE(cmd *cobra.Command, modelName, dataPath string, strict bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	modelName, err = resolveModelName(cfg, modelName)
	if err != nil {
		return err
	}
	if dataPath == "" {
		dataPath = filepath.Join(cfg.Data.Dir, "test.csv")
	}

	holdout, err := dataset.LoadHoldout(dataPath, cfg.Data.LabelColumn)
	if err != nil {
		return err
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	recorder, err := audit.NewFileRecorder(filepath.Join(cfg.Results, "decisions.jsonl"))
	if err != nil {
		return err
	}

	var notifier promote.ReloadNotifier
	if cfg.Reload.URL != "" {
		notifier = notify.New(notify.Config{
			URL:     cfg.Reload.URL,
			Token:   cfg.Reload.Token,
			Timeout: time.Duration(cfg.Reload.TimeoutSec) * time.Second,
		})
	}

	orchestrator := promote.New(promote.Config{
		Registry: reg,
		Recorder: recorder,
		Notifier: notifier,
		Gates: models.GateThresholds{
			MinAccuracy: *cfg.Gates.MinAccuracy,
			MinF1:       *cfg.Gates.MinF1,
		},
	})

	res, err := orchestrator.Run(cmd.Context(), modelName, holdout)
	if err != nil {
		return err
	}

	printRunReport(cmd.OutOrStdout(), modelName, res)

	if strict && res.Decision.Outcome == models.OutcomeReject {
		return &RejectionError{Message: fmt.Sprintf(
			"version %d of %s was rejected: %s",
			res.Candidate.Version, modelName, res.Decision.ReasonString())}
	}
	return nil
}

// resolveModelName prefers the flag, then config, and fails with a hint
// when neither is set.
func resolveModelName(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Model != "" {
		return cfg.Model, nil
	}
	return "", fmt.Errorf("no model name: pass --model or set model in .champ.yaml")
}

// openRegistry picks the registry implementation from the URI scheme:
// http(s) URIs get the REST client, everything else is treated as a local
// directory.
func openRegistry(cfg *config.Config) (registry.Client, error) {
	strategy, err := registry.ParseStrategy(cfg.Registry.Strategy)
	if err != nil {
		return nil, err
	}
	uri := cfg.Registry.URI
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return registry.NewRESTRegistry(uri, strategy)
	}
	return registry.NewFSRegistry(uri, strategy)
}
