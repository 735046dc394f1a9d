package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/champlabs/champ/internal/config"
)

func newVersionsCommand() *cobra.Command {
	var (
		modelName string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List registered versions of a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionsCommandE(cmd, modelName, format)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "Registered model name (defaults to config)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func versionsCommandE(cmd *cobra.Command, modelName, format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	modelName, err = resolveModelName(cfg, modelName)
	if err != nil {
		return err
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	versions, err := reg.ListVersions(cmd.Context(), modelName)
	if err != nil {
		return err
	}
	champion, err := reg.ResolveChampion(cmd.Context(), modelName)
	if err != nil {
		return err
	}

	if format == "json" {
		payload := map[string]any{
			"model":    modelName,
			"versions": versions,
			"champion": champion,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	printVersionsTable(cmd.OutOrStdout(), modelName, versions, champion)
	return nil
}
