package cli

import (
	"log/slog"
	"time"

	"docconv/internal/config"
	"docconv/internal/domain/services"
	"docconv/internal/service/conversion"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries what the subcommands share once flags are parsed
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	verbose bool

	// overrides from persistent flags, applied over the environment
	binary  string
	timeout time.Duration
	tempDir string

	newConverter func(cfg *config.Config, logger *slog.Logger) services.Converter
}

// Execute runs the docconv command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the docconv command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		newConverter: func(cfg *config.Config, logger *slog.Logger) services.Converter {
			return conversion.NewService(conversion.ConfigFrom(cfg), logger)
		},
	})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docconv",
		Short: "Convert office documents with a headless LibreOffice",
		Long: "docconv converts documents by running LibreOffice in headless mode.\n" +
			"It serves an HTTP upload endpoint or converts local files directly.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.binary, "binary", "",
		"Converter executable (overrides APP_CONVERTER_BINARY)")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0,
		"Conversion timeout (overrides APP_CONVERSION_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&a.tempDir, "temp-dir", "",
		"Base directory for workspaces (overrides APP_TEMP_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Log conversion details to stderr")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newFormatsCmd(a))
	rootCmd.AddCommand(newDoctorCmd(a))

	return rootCmd
}

// load reads .env and the environment, then applies flag overrides.
func (a *app) load(cmd *cobra.Command) error {
	// Silently ignore a missing .env file
	_ = godotenv.Load()

	a.cfg = config.Load()
	if a.binary != "" {
		a.cfg.ConverterBinary = a.binary
	}
	if a.timeout > 0 {
		a.cfg.ConversionTimeout = a.timeout
	}
	if a.tempDir != "" {
		a.cfg.TempDir = a.tempDir
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	// serve builds its own process logger
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
