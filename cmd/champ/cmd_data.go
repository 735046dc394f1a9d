package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/champlabs/champ/internal/config"
	"github.com/champlabs/champ/internal/dataset"
)

func newDataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch and prepare datasets",
	}

	cmd.AddCommand(newDataFetchCommand())
	cmd.AddCommand(newDataSplitCommand())

	return cmd
}

func newDataFetchCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a raw dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(cfg.Data.Dir, "raw.csv")
			}
			if err := dataset.Download(cmd.Context(), args[0], output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path (defaults to <data dir>/raw.csv)")

	return cmd
}

func newDataSplitCommand() *cobra.Command {
	var (
		input    string
		testSize float64
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a raw dataset into stratified train and test sets",
		Long: `Split a raw CSV into train.csv and test.csv with a seeded, stratified
split: each class contributes the same fraction of rows to the test set,
and the same seed always produces the same split.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if input == "" {
				input = filepath.Join(cfg.Data.Dir, "raw.csv")
			}
			if testSize == 0 {
				testSize = *cfg.Data.TestSize
			}
			if seed == 0 {
				seed = *cfg.Data.Seed
			}

			trainPath := filepath.Join(cfg.Data.Dir, "train.csv")
			testPath := filepath.Join(cfg.Data.Dir, "test.csv")
			if err := dataset.SplitFile(input, trainPath, testPath, testSize, seed, cfg.Data.LabelColumn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s and %s\n", trainPath, testPath) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Raw CSV path (defaults to <data dir>/raw.csv)")
	cmd.Flags().Float64Var(&testSize, "test-size", 0, "Fraction of rows held out for testing (defaults to config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed (defaults to config)")

	return cmd
}
