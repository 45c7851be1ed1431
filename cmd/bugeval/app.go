package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ricesearch/bugeval/internal/bus"
	"github.com/ricesearch/bugeval/internal/cache"
	"github.com/ricesearch/bugeval/internal/config"
	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/format"
	"github.com/ricesearch/bugeval/internal/metrics"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/pkg/hash"
	"github.com/ricesearch/bugeval/internal/pkg/logger"
)

// app is the per-invocation runtime shared by the subcommands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Collector
	format  string
	out     io.Writer
	runID   string

	closers []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "text", "json", "markdown":
	default:
		return nil, errors.ValidationError(fmt.Sprintf("invalid format: %s (must be text, json or markdown)", format))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		metrics: metrics.New(),
		format:  format,
		out:     cmd.OutOrStdout(),
		runID:   hash.SHA256Short([]byte(cmd.Name()+time.Now().Format(time.RFC3339Nano)), 12),
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		a.log = logger.NewWithWriter(f, level, cfg.Log.Format)
	} else {
		a.log = logger.NewWithWriter(cmd.ErrOrStderr(), level, cfg.Log.Format)
	}
	a.log = &logger.Logger{Logger: a.log.With("run", a.runID)}

	return a, nil
}

// openBus creates the configured event bus, closed with the app.
func (a *app) openBus() (bus.Bus, error) {
	b, err := bus.NewBus(a.cfg.Bus, a.metrics, a.log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, b.Close)
	return b, nil
}

// openCache creates the configured method cache, closed with the app.
func (a *app) openCache() (cache.Cache, error) {
	c, err := cache.New(a.cfg.Cache)
	if err != nil {
		return nil, err
	}
	if m, ok := c.(interface{ SetMetrics(cache.Metrics) }); ok {
		m.SetMetrics(a.metrics)
	}
	a.closers = append(a.closers, c.Close)
	return c, nil
}

func (a *app) skipList() dataset.SkipList {
	return dataset.NewSkipList(a.cfg.SkipLists())
}

// close writes the metrics textfile and releases resources in reverse order.
func (a *app) close() {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.log.WithError(err).Warn("Failed to write metrics", "path", path)
		} else {
			a.log.Debug("Metrics written", "path", path)
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("Failed to release resource")
		}
	}
	a.closers = nil
}

func (a *app) json() bool {
	return a.format == "json"
}

// table returns a table builder for the selected output format.
func (a *app) table() format.TableBuilder {
	return format.NewTable(format.ParseMode(a.format))
}

func (a *app) writeTable(tb format.TableBuilder) {
	fmt.Fprintln(a.out, tb.String())
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func logRejected(log *logger.Logger, path string, rejected []dataset.Rejected) {
	for _, rj := range rejected {
		log.WithError(rj.Err).Warn("Dropping malformed entry", "file", path, "index", rj.Index)
	}
}
