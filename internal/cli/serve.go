package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docconv/internal/config"
	"docconv/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Port = port
			}
			return Serve(cmd.Context(), a.cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")

	return cmd
}

// Serve runs the HTTP service until ctx is canceled or the process is
// interrupted.
func Serve(ctx context.Context, cfg *config.Config) error {
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"converter", cfg.ConverterBinary,
		"allowed_formats", cfg.AllowedFormats,
		"delete_files", cfg.DeleteFiles,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
