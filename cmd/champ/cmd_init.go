package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/champlabs/champ/internal/config"
	"github.com/champlabs/champ/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new champ project",
		Long: `Initialize a champ project: a .champ.yaml config file plus the data and
results directories the other commands expect.

Use --interactive to run a guided wizard that collects the model name,
registry location, and promotion gates.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided project setup wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, ".champ.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", configPath, err)
	}

	cfg := config.New()
	if interactive {
		spec, err := wizard.RunProjectWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg = spec.ToConfig()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	dataDir := filepath.Join(dir, cfg.Data.Dir)
	resultsDir := filepath.Join(dir, cfg.Results)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized champ project:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", configPath)          //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s/\n", dataDir)            //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s/\n", resultsDir)         //nolint:errcheck

	return nil
}
