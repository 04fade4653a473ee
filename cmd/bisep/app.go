// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jazzpetri/bisep/clock"
	"github.com/jazzpetri/bisep/config"
	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
	"github.com/jazzpetri/bisep/store"
)

// globalFlags override settings from the config file.
type globalFlags struct {
	config   string
	workers  int
	logLevel string
	maxCalls int64
	trace    bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.config, "config", "", "config file (default $"+config.EnvConfigPath+" or ./"+config.ConfigFileName+")")
	fs.IntVar(&g.workers, "workers", 0, "parallel workers (0 keeps the configured value)")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.Int64Var(&g.maxCalls, "max-lp-calls", -1, "LP call budget per run, 0 for unlimited")
	fs.BoolVar(&g.trace, "trace", false, "write OpenTelemetry spans to stderr")
}

// app carries the shared state of one invocation.
type app struct {
	cfg        *config.Config
	configPath string
	stdout     io.Writer
	stderr     io.Writer
	clock      clock.Clock
	logger     *bctx.SlogLogger
	metrics    *bctx.CounterMetrics
	tracer     bctx.Tracer
	shutdown   func(context.Context) error
}

func newApp(g globalFlags, stdout, stderr io.Writer) (*app, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if g.config != "" {
		path = g.config
		cfg, err = config.LoadFromPath(g.config)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.workers > 0 {
		cfg.Workers = g.workers
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.maxCalls >= 0 {
		cfg.LP.MaxCalls = g.maxCalls
	}

	level, err := bctx.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(stderr, opts)
	}

	a := &app{
		cfg:        cfg,
		configPath: path,
		stdout:     stdout,
		stderr:     stderr,
		clock:      clock.NewRealTimeClock(),
		logger:     bctx.NewSlogLoggerFrom(slog.New(handler)),
		metrics:    bctx.NewCounterMetrics(),
		tracer:     &bctx.NoOpTracer{},
		shutdown:   func(context.Context) error { return nil },
	}
	if g.trace {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(stderr))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		a.tracer = bctx.NewOTelTracer(tp.Tracer("bisep"))
		a.shutdown = tp.Shutdown
	}
	if path != "" {
		a.logger.Debug("loaded config", map[string]interface{}{"path": path})
	}
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("trace shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

// analysis wraps ctx with the app's clock and observability.
func (a *app) analysis(ctx context.Context) *bctx.AnalysisContext {
	return bctx.NewAnalysisContextBuilder().
		WithContext(ctx).
		WithClock(a.clock).
		WithLogger(a.logger).
		WithMetrics(a.metrics).
		WithTracer(a.tracer).
		Build()
}

// oracle returns a fresh LP oracle with the configured backend, retries
// and budget.
func (a *app) oracle() (*lp.BudgetOracle, error) {
	return a.cfg.Oracle(a.clock, a.logger, a.metrics)
}

// withTimeout applies the configured check timeout, if any.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := a.cfg.Check.Timeout.Duration(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// catalog opens the configured catalogue. It returns nil when none is
// configured.
func (a *app) catalog() (*store.Catalog, error) {
	if a.cfg.Store.Path == "" {
		return nil, nil
	}
	return store.OpenCatalog(a.cfg.Store.Path, a.clock)
}
