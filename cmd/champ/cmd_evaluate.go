package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/champlabs/champ/internal/config"
	"github.com/champlabs/champ/internal/dataset"
	"github.com/champlabs/champ/internal/evaluate"
	"github.com/champlabs/champ/internal/models"
)

func newEvaluateCommand() *cobra.Command {
	var (
		modelName string
		dataPath  string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [version]",
		Short: "Score a model version on the holdout dataset",
		Long: `Score one registered version on the holdout dataset and print its
metrics, without touching the champion pointer or the audit trail.

If no version is given, the highest-numbered version is scored. Use
--output to also write the metrics as JSON, which CI jobs attach as a
build artifact.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluateCommandE(cmd, args, modelName, dataPath, output)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "Registered model name (defaults to config)")
	cmd.Flags().StringVar(&dataPath, "data", "", "Holdout CSV path (defaults to <data dir>/test.csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write metrics JSON to this path")

	return cmd
}

func evaluateCommandE(cmd *cobra.Command, args []string, modelName, dataPath, output string) error {
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

	version := 0
	if len(args) == 1 {
		version, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("version must be a number, got %q", args[0])
		}
	} else {
		versions, err := reg.ListVersions(cmd.Context(), modelName)
		if err != nil {
			return err
		}
		latest := models.MaxVersion(versions)
		if latest == nil {
			return fmt.Errorf("%s has no registered versions", modelName)
		}
		version = latest.Version
	}

	predictor, err := reg.LoadPredictor(cmd.Context(), modelName, version)
	if err != nil {
		return err
	}

	metrics, err := evaluate.Score(predictor, holdout.Features, holdout.Labels)
	if err != nil {
		return err
	}

	printMetricsTable(cmd.OutOrStdout(), fmt.Sprintf("%s version %d", modelName, version), metrics)

	if output != "" {
		data, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
		if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", output) //nolint:errcheck
	}
	return nil
}
