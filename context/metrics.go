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
	"sort"
	"sync"
)

// CounterMetrics is an in-memory MetricsCollector. The CLI prints its
// counters after a run and tests assert on them.
type CounterMetrics struct {
	mu           sync.Mutex
	counters     map[string]float64
	gauges       map[string]float64
	observations map[string][]float64
}

// NewCounterMetrics creates an empty collector.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{
		counters:     make(map[string]float64),
		gauges:       make(map[string]float64),
		observations: make(map[string][]float64),
	}
}

// Inc increments counter name by one.
func (c *CounterMetrics) Inc(name string) {
	c.Add(name, 1)
}

// Add adds value to counter name.
func (c *CounterMetrics) Add(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += value
}

// Observe appends value to histogram name.
func (c *CounterMetrics) Observe(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observations[name] = append(c.observations[name], value)
}

// Set sets gauge name.
func (c *CounterMetrics) Set(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

// Counter returns the value of counter name, zero if never touched.
func (c *CounterMetrics) Counter(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Gauge returns the value of gauge name.
func (c *CounterMetrics) Gauge(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gauges[name]
}

// Observations returns a copy of the values observed for name.
func (c *CounterMetrics) Observations(name string) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.observations[name]))
	copy(out, c.observations[name])
	return out
}

// CounterNames returns the names of all counters, sorted.
func (c *CounterMetrics) CounterNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.counters))
	for k := range c.counters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
