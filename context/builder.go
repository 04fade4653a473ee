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

package context

import (
	stdcontext "context"

	"github.com/jazzpetri/bisep/clock"
)

// AnalysisContextBuilder provides a fluent API for building an AnalysisContext.
type AnalysisContextBuilder struct {
	ctx     stdcontext.Context
	clock   clock.Clock
	logger  Logger
	metrics MetricsCollector
	tracer  Tracer
}

// NewAnalysisContextBuilder creates a builder over context.Background and the
// real-time clock.
func NewAnalysisContextBuilder() *AnalysisContextBuilder {
	return &AnalysisContextBuilder{
		ctx:   stdcontext.Background(),
		clock: clock.NewRealTimeClock(),
	}
}

// WithContext sets the standard context.
func (b *AnalysisContextBuilder) WithContext(ctx stdcontext.Context) *AnalysisContextBuilder {
	b.ctx = ctx
	return b
}

// WithClock sets the clock.
func (b *AnalysisContextBuilder) WithClock(clk clock.Clock) *AnalysisContextBuilder {
	b.clock = clk
	return b
}

// WithLogger sets the logger.
func (b *AnalysisContextBuilder) WithLogger(logger Logger) *AnalysisContextBuilder {
	b.logger = logger
	return b
}

// WithMetrics sets the metrics collector.
func (b *AnalysisContextBuilder) WithMetrics(metrics MetricsCollector) *AnalysisContextBuilder {
	b.metrics = metrics
	return b
}

// WithTracer sets the tracer.
func (b *AnalysisContextBuilder) WithTracer(tracer Tracer) *AnalysisContextBuilder {
	b.tracer = tracer
	return b
}

// Build creates the AnalysisContext. Unset components get their defaults.
func (b *AnalysisContextBuilder) Build() *AnalysisContext {
	ac := &AnalysisContext{
		Context: b.ctx,
		Clock:   b.clock,
		Logger:  b.logger,
		Metrics: b.metrics,
		Tracer:  b.tracer,
	}
	ac.ensureDefaults()
	return ac
}
