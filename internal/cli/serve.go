package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mineraly/internal/app"
	"github.com/JonMunkholm/mineraly/internal/config"
	"github.com/JonMunkholm/mineraly/internal/logging"
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web viewer",
		Long: `Serve the web viewer configured from environment variables.

The collection is read from SOURCE_PATH or SOURCE_URL; see the README for
all settings. Values in the env file override the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Overload(envFile); err != nil {
				slog.Info("no env file loaded, using environment variables", "file", envFile)
			} else {
				slog.Info("loaded env file (overwriting existing env vars)", "file", envFile)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "env file to load")
	return cmd
}
