package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/champlabs/champ/internal/config"
	"github.com/champlabs/champ/internal/serving"
)

func newServeCommand() *cobra.Command {
	var (
		modelName string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the production model over HTTP",
		Long: `Serve the current production model.

Endpoints:
  POST /predict  score feature rows with the loaded model
  POST /reload   swap in the latest production version (bearer token)
  GET  /healthz  liveness plus the served model version

The promote command pings /reload after each promotion, so a running
server picks up new champions without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommandE(cmd, modelName, port)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "Registered model name (defaults to config)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (defaults to config)")

	return cmd
}

func serveCommandE(cmd *cobra.Command, modelName string, port int) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	modelName, err = resolveModelName(cfg, modelName)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Serve.Port
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	server := serving.NewServer(serving.Config{
		Registry:    reg,
		Model:       modelName,
		ReloadToken: cfg.Reload.Token,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.LoadProduction(ctx); err != nil {
		return err
	}

	return server.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
