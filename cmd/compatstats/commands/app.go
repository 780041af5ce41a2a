// Package commands implements the compatstats subcommands.
package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/compatstats/internal/config"
	"github.com/Sumatoshi-tech/compatstats/pkg/observability"
	"github.com/Sumatoshi-tech/compatstats/pkg/version"
)

// Global flag names.
const (
	flagConfig  = "config"
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
)

// ErrVerboseQuiet is returned when both --verbose and --quiet are set.
var ErrVerboseQuiet = errors.New("--verbose and --quiet are mutually exclusive")

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// Register binds the flags to cmd's persistent flag set.
func (g *GlobalFlags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&g.ConfigPath, flagConfig, "c", "", "config file (default .compatstats.yaml in CWD or $HOME)")
	cmd.PersistentFlags().BoolVarP(&g.Verbose, flagVerbose, "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&g.Quiet, flagQuiet, "q", false, "suppress output")
}

// app is the per-invocation state: loaded config and observability providers.
type app struct {
	cfg       *config.Config
	providers observability.Providers
	out       io.Writer
	quiet     bool
}

func newApp(cmd *cobra.Command, flags *GlobalFlags, mode observability.AppMode) (*app, error) {
	if flags.Verbose && flags.Quiet {
		return nil, ErrVerboseQuiet
	}

	cfg, err := config.LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = observability.ParseLogLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.JSON || mode == observability.ModeMCP

	switch {
	case flags.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.TraceVerbose = true
	case flags.Quiet:
		obsCfg.LogLevel = slog.LevelWarn
	}

	obsCfg.ApplyEnv()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, providers: providers, out: cmd.OutOrStdout(), quiet: flags.Quiet}, nil
}

func (a *app) logger() *slog.Logger { return a.providers.Logger }

func (a *app) close() {
	err := a.providers.Shutdown(context.Background())
	if err != nil {
		a.logger().Warn("observability shutdown failed", "error", err)
	}
}

// stdout returns the command output, or io.Discard in quiet mode.
func (a *app) stdout() io.Writer {
	if a.quiet {
		return io.Discard
	}

	return a.out
}

func writeFile(path string, write func(io.Writer) error) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	writeErr := write(f)
	closeErr := f.Close()

	if writeErr != nil {
		return 0, writeErr
	}

	if closeErr != nil {
		return 0, closeErr
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}
