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

// Tracer creates trace spans around analysis phases (an LP round, a
// generator level, a checker run). Implementations must be thread-safe.
//
// Use NoOpTracer when tracing is disabled.
type Tracer interface {
	// StartSpan creates a new span. Call End when the operation completes.
	//
	// Example:
	//   span := tracer.StartSpan("separator.level")
	//   defer span.End()
	StartSpan(name string) Span
}

// Span represents a single traced operation.
// Implementations must be safe for concurrent use.
type Span interface {
	// End marks the span as complete.
	End()

	// SetAttribute adds a key-value attribute to the span.
	// Supported value types are string, bool, int, int64 and float64;
	// other values are recorded through fmt.Sprint.
	SetAttribute(key string, value interface{})

	// RecordError records an error that occurred during the span.
	RecordError(err error)
}

// MetricsCollector records counters, histograms and gauges.
// Implementations must be thread-safe.
//
// Use NoOpMetrics when metrics are disabled.
type MetricsCollector interface {
	// Inc increments a counter metric by 1.
	//
	// Example:
	//   metrics.Inc("lp_checks_total")
	Inc(name string)

	// Add adds a value to a counter or gauge.
	Add(name string, value float64)

	// Observe records a value in a histogram.
	//
	// Example:
	//   metrics.Observe("separator_generate_seconds", 0.123)
	Observe(name string, value float64)

	// Set sets a gauge to a specific value.
	Set(name string, value float64)
}

// Logger handles structured logging with contextual fields.
// Implementations must be thread-safe.
//
// Use NoOpLogger when logging is disabled.
type Logger interface {
	// Debug logs a debug-level message.
	//
	// Example:
	//   logger.Debug("up set computed", map[string]interface{}{
	//       "level": 2,
	//       "up":    []int{0, 3},
	//   })
	Debug(msg string, fields map[string]interface{})

	// Info logs an info-level message.
	Info(msg string, fields map[string]interface{})

	// Warn logs a warning-level message.
	Warn(msg string, fields map[string]interface{})

	// Error logs an error-level message.
	//
	// Example:
	//   logger.Error("oracle failed", map[string]interface{}{
	//       "attempt": 3,
	//       "error":   err.Error(),
	//   })
	Error(msg string, fields map[string]interface{})
}
