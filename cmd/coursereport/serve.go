package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"coursereport/internal/app"
	"coursereport/internal/infrastructure"
)

func newServeCmd(env *cliEnv) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP report service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				env.cfg.Server.Port = port
			}

			// the service logs per its configuration, not to the CLI's stderr logger
			logger, err := infrastructure.InitializeLogger(env.cfg.Logging)
			if err != nil {
				env.logger.Warn("Failed to initialize logger, using stderr", slog.String("error", err.Error()))
				logger = env.logger
			}

			application, err := app.NewApplicationWithConfig(env.cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides configuration)")
	return cmd
}
