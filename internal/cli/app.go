package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/hashfold/internal/config"
	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/ledger"
	"github.com/roach88/hashfold/internal/metrics"
	"github.com/roach88/hashfold/internal/store"
	"github.com/roach88/hashfold/internal/walker"
)

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg     config.Config
	store   *store.Store
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
	log     *slog.Logger
	out     *OutputFormatter
	opts    *RootOptions
}

// openApp resolves configuration, sets up logging, and opens the ledger.
// The caller must close the returned app.
func openApp(ctx context.Context, cmd *cobra.Command, opts *RootOptions, extra ...ledger.Option) (*app, error) {
	cfg, err := config.Resolve(opts.viper, opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)
	slog.SetDefault(logger)

	if dir := filepath.Dir(cfg.Ledger.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create ledger directory", err)
		}
	}
	logger.Debug("opening ledger", "path", cfg.Ledger.Path)
	st, err := store.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	m := metrics.New()
	ledgerOpts := append([]ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithMetrics(m),
		ledger.WithBigFileThreshold(cfg.Hashing.BigFileThreshold),
		ledger.WithMaxPerfEntries(cfg.Hashing.MaxPerfEntries),
		ledger.WithEnumerator(newWalker(cfg, logger)),
	}, extra...)

	l, err := ledger.Open(ctx, st, ledgerOpts...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitFailure, "failed to open ledger", err)
	}

	return &app{
		cfg:     cfg,
		store:   st,
		ledger:  l,
		metrics: m,
		log:     logger,
		opts:    opts,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// close writes the metrics file, if requested, and closes the store.
func (a *app) close() {
	if a.opts.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.opts.MetricsFile); err != nil {
			a.log.Error("error writing metrics file", "path", a.opts.MetricsFile, "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("error closing ledger", "error", err)
	}
}

// register resolves and registers a root given on the command line.
func (a *app) register(ctx context.Context, root string) (ir.RootID, error) {
	id, err := a.ledger.Register(ctx, root)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "invalid root", err)
	}
	return id, nil
}

// newLogger builds the process logger from config; verbose forces debug.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// commandContext returns the command's context, cancelled on SIGINT or
// SIGTERM so long scans stop between files.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// walkerFor returns the enumerator configured for this run.
func walkerFor(a *app) *walker.Walker {
	return newWalker(a.cfg, a.log)
}

func newWalker(cfg config.Config, log *slog.Logger) *walker.Walker {
	w := walker.New(cfg.Scan.Exclude...)
	w.OnSkip = func(path string, err error) {
		log.Warn("skipping unreadable entry", "path", path, "error", err)
	}
	return w
}
