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
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoOpImplementations(t *testing.T) {
	var tracer Tracer = &NoOpTracer{}
	span := tracer.StartSpan("noop")
	if _, ok := span.(*NoOpSpan); !ok {
		t.Errorf("NoOpTracer should return NoOpSpan, got %T", span)
	}
	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	span.End()

	var metrics MetricsCollector = &NoOpMetrics{}
	metrics.Inc("c")
	metrics.Add("c", 2)
	metrics.Observe("h", 0.5)
	metrics.Set("g", 1)

	var logger Logger = &NoOpLogger{}
	logger.Debug("d", nil)
	logger.Info("i", map[string]interface{}{"k": 1})
	logger.Warn("w", nil)
	logger.Error("e", nil)
}

func TestSlogLogger_WritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(&buf, slog.LevelInfo)

	logger.Info("level done", map[string]interface{}{
		"z_up":  2,
		"a_net": "mutex",
	})

	out := buf.String()
	if !strings.Contains(out, "msg=\"level done\"") {
		t.Errorf("missing message in %q", out)
	}
	ia := strings.Index(out, "a_net=mutex")
	iz := strings.Index(out, "z_up=2")
	if ia < 0 || iz < 0 {
		t.Fatalf("missing fields in %q", out)
	}
	if ia > iz {
		t.Errorf("fields not in key order: %q", out)
	}
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(&buf, slog.LevelWarn)

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	logger.Error("shown", map[string]interface{}{"error": "boom"})
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected error record, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOTelTracer_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tracer := NewOTelTracer(tp.Tracer("bisep-test"))

	span := tracer.StartSpan("separator.generate")
	span.SetAttribute("net", "mutex")
	span.SetAttribute("transitions", 4)
	span.SetAttribute("strict", true)
	span.SetAttribute("ids", []int{1, 2})
	span.RecordError(errors.New("oracle failed"))
	span.RecordError(nil)
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	got := ended[0]
	if got.Name() != "separator.generate" {
		t.Errorf("span name = %q", got.Name())
	}
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["net"].AsString() != "mutex" {
		t.Errorf("net attribute = %v", attrs["net"])
	}
	if attrs["transitions"].AsInt64() != 4 {
		t.Errorf("transitions attribute = %v", attrs["transitions"])
	}
	if !attrs["strict"].AsBool() {
		t.Errorf("strict attribute = %v", attrs["strict"])
	}
	if got.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status().Code)
	}
	if len(got.Events()) != 1 {
		t.Errorf("expected 1 recorded error event, got %d", len(got.Events()))
	}
}

func TestGlobalOTelTracer_NoProvider(t *testing.T) {
	span := NewGlobalOTelTracer("bisep-test").StartSpan("noop")
	span.SetAttribute("x", 1.5)
	span.End()
}

func TestCounterMetrics(t *testing.T) {
	m := NewCounterMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Inc("lp_checks_total")
		}()
	}
	wg.Wait()
	m.Add("atomic_checks_total", 7)
	m.Set("separator_clauses", 3)
	m.Observe("separator_generate_seconds", 0.25)
	m.Observe("separator_generate_seconds", 0.5)

	if got := m.Counter("lp_checks_total"); got != 50 {
		t.Errorf("lp_checks_total = %v, want 50", got)
	}
	if got := m.Counter("atomic_checks_total"); got != 7 {
		t.Errorf("atomic_checks_total = %v, want 7", got)
	}
	if got := m.Gauge("separator_clauses"); got != 3 {
		t.Errorf("separator_clauses = %v, want 3", got)
	}
	if got := m.Observations("separator_generate_seconds"); len(got) != 2 || got[1] != 0.5 {
		t.Errorf("observations = %v", got)
	}
	names := m.CounterNames()
	if len(names) != 2 || names[0] != "atomic_checks_total" {
		t.Errorf("CounterNames = %v", names)
	}
}
