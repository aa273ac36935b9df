// Package cli implements the fragmenstein command line: global flags, the
// configuration and logger initialisation chain, and the combine, place,
// batch and version subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwinokan/Fragmenstein/internal/config"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fragmenstein",
		Short: "Fragmenstein places follow-up compounds onto crystallographic fragment hits",
		Long: "Fragmenstein merges overlapping fragment hits into a scaffold and places a\n" +
			"follow-up compound by mapping it onto the scaffold, keeping the hits' coordinates.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: FRAGMENSTEIN_* environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.StringVarP(&opts.OutputFormat, "output", "o", outputTable, "output format (table, json)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newCombineCmd(),
		newPlaceCmd(),
		newBatchCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}
	format := strings.ToLower(opts.OutputFormat)
	if format != outputTable && format != outputJSON {
		return errors.InvalidParam("unknown output format").WithDetail(opts.OutputFormat)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "config initialization failed")
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "logger initialization failed")
	}
	logging.SetDefault(logger)

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   opts.ConfigPath,
		Logger:       logger,
		OutputFormat: format,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initLogger creates a logger configured for CLI usage: console format on
// stderr unless the config asks otherwise.
func initLogger(cfg *config.Config) (logging.Logger, error) {
	logCfg := cfg.Log
	if logCfg.Format == "" {
		logCfg.Format = "console"
	}
	if len(logCfg.OutputPaths) == 0 {
		logCfg.OutputPaths = []string{"stderr"}
	}
	return logging.NewLogger(logCfg)
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the root command until it finishes or the process receives
// SIGINT/SIGTERM, and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

//Personal.AI order the ending
