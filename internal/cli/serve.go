package cli

import (
	"context"

	httpadapter "tasksapi/internal/adapter/http"
	"tasksapi/internal/adapter/telemetry"
	"tasksapi/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (r *RootCommand) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := config.NewLogger(cfg.Log, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tel, err := telemetry.NewContainer(ctx, cfg.Telemetry, cfg.Server.Environment, logger)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultTimeout)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	tel.StartMetricsServer()

	server, err := httpadapter.NewServer(ctx, cfg, logger, tel)
	if err != nil {
		return err
	}

	return server.Run(ctx)
}
