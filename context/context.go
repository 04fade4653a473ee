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

// Package context provides the AnalysisContext carried through every
// reachability query, separator generation and separator check.
//
// AnalysisContext combines:
//   - the standard Go context for cancellation and deadlines
//   - a Clock for timings and oracle backoff
//   - observability tools (Tracer, Metrics, Logger)
//
// All observability fields default to NoOp implementations and are never nil
// after construction.
//
// Example usage:
//
//	ac := context.NewAnalysisContext(goCtx, clock.NewRealTimeClock()).
//	    WithLogger(context.NewSlogLogger(os.Stderr, slog.LevelInfo))
//	f, err := gen.Generate(ac, u, msrc, mtgt)
package context

import (
	"context"

	"github.com/jazzpetri/bisep/clock"
)

// AnalysisContext carries cancellation, time and observability through the
// analysis pipeline. Values are treated as immutable: the With* methods
// return modified copies.
type AnalysisContext struct {
	// Context is the standard Go context for cancellation and deadlines.
	Context context.Context

	// Clock provides time operations. Use VirtualClock in tests.
	Clock clock.Clock

	// Tracer handles tracing. Defaults to NoOpTracer.
	Tracer Tracer

	// Metrics handles metrics collection. Defaults to NoOpMetrics.
	Metrics MetricsCollector

	// Logger handles structured logging. Defaults to NoOpLogger.
	Logger Logger
}

// NewAnalysisContext creates an analysis context with NoOp observability.
// A nil ctx is replaced by context.Background and a nil clk by a real-time
// clock.
func NewAnalysisContext(ctx context.Context, clk clock.Clock) *AnalysisContext {
	ac := &AnalysisContext{
		Context: ctx,
		Clock:   clk,
	}
	ac.ensureDefaults()
	return ac
}

// Background returns an analysis context over context.Background and the
// real-time clock.
func Background() *AnalysisContext {
	return NewAnalysisContext(context.Background(), clock.NewRealTimeClock())
}

// ensureDefaults replaces nil components with their defaults.
func (a *AnalysisContext) ensureDefaults() {
	if a.Context == nil {
		a.Context = context.Background()
	}
	if a.Clock == nil {
		a.Clock = clock.NewRealTimeClock()
	}
	if a.Logger == nil {
		a.Logger = &NoOpLogger{}
	}
	if a.Metrics == nil {
		a.Metrics = &NoOpMetrics{}
	}
	if a.Tracer == nil {
		a.Tracer = &NoOpTracer{}
	}
}

// Err reports the cancellation state of the underlying Go context.
func (a *AnalysisContext) Err() error {
	return a.Context.Err()
}

// WithContext returns a copy using ctx for cancellation. Worker pools use
// it to hand each worker the group context.
func (a *AnalysisContext) WithContext(ctx context.Context) *AnalysisContext {
	c := *a
	c.Context = ctx
	c.ensureDefaults()
	return &c
}

// WithTracer returns a copy with the given tracer.
func (a *AnalysisContext) WithTracer(tracer Tracer) *AnalysisContext {
	c := *a
	c.Tracer = tracer
	c.ensureDefaults()
	return &c
}

// WithMetrics returns a copy with the given metrics collector.
func (a *AnalysisContext) WithMetrics(metrics MetricsCollector) *AnalysisContext {
	c := *a
	c.Metrics = metrics
	c.ensureDefaults()
	return &c
}

// WithLogger returns a copy with the given logger.
func (a *AnalysisContext) WithLogger(logger Logger) *AnalysisContext {
	c := *a
	c.Logger = logger
	c.ensureDefaults()
	return &c
}

// WithClock returns a copy with the given clock.
func (a *AnalysisContext) WithClock(clk clock.Clock) *AnalysisContext {
	c := *a
	c.Clock = clk
	c.ensureDefaults()
	return &c
}

// Clone returns a builder initialized from this context.
func (a *AnalysisContext) Clone() *AnalysisContextBuilder {
	return &AnalysisContextBuilder{
		ctx:     a.Context,
		clock:   a.Clock,
		logger:  a.Logger,
		metrics: a.Metrics,
		tracer:  a.Tracer,
	}
}
