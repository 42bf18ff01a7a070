package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/toothdex/internal/config"
	"github.com/roach88/toothdex/internal/engine"
	"github.com/roach88/toothdex/internal/metrics"
	"github.com/roach88/toothdex/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigPath string // optional toothdex.yaml
	Backend    string // overrides config backend when set
	Path       string // overrides config path when set
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultConfigPath is read when --config is not given. It may be absent.
const DefaultConfigPath = "toothdex.yaml"

// NewRootCommand creates the root command for the toothdex CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "toothdex",
		Short: "toothdex - dental pattern rarity tracker",
		Long: `Record which of the 28 permanent teeth are present, and see how rare
that pattern is among everything submitted so far.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", DefaultConfigPath, "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (file|sqlite), overrides config")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "store path, overrides config")

	// Add subcommands
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewSpaceCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig reads the config file and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.Path != "" {
		cfg.Path = o.Path
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger. JSON output gets JSON logs so a
// consumer can parse stderr too.
func (o *RootOptions) newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if o.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openBackend opens the backend cfg names.
func openBackend(cfg config.Config) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return store.OpenSQLite(cfg.Path)
	default:
		return store.NewFileBackend(cfg.Path), nil
	}
}

// openService loads config, opens the backend and the service on it.
// The caller must Close the returned service.
func (o *RootOptions) openService(ctx context.Context, cmd *cobra.Command, m *metrics.Collector) (*engine.Service, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := o.newLogger(cmd.ErrOrStderr(), cfg)
	logger.Debug("opening store", "backend", cfg.Backend, "path", cfg.Path)

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	svc, err := engine.Open(ctx, backend,
		engine.WithPolicy(cfg.Policy()),
		engine.WithLogger(logger),
		engine.WithMetrics(m),
	)
	if err != nil {
		_ = backend.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load store", err)
	}
	return svc, nil
}
