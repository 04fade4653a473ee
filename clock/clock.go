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

// Package clock provides the time abstraction used by the analysis packages.
//
// Only two operations are needed: reading the time (for the timings reported
// by the CLI and the check reports) and waiting (for the backoff between LP
// oracle retries). RealTimeClock delegates to the time package; VirtualClock
// advances instantly so that retry schedules can be tested deterministically.
//
// Example usage in production:
//
//	clk := clock.NewRealTimeClock()
//	start := clk.Now()
//	<-clk.After(50 * time.Millisecond)
//	elapsed := clock.Since(clk, start)
//
// Example usage in tests:
//
//	clk := clock.NewVirtualClock(start)
//	<-clk.After(time.Second) // returns at once, clk.Now() moved by 1s
package clock

import "time"

// Clock abstracts time operations for testing and production.
// Implementations must be safe for concurrent use by multiple goroutines.
type Clock interface {
	// Now returns the current time according to this clock.
	Now() time.Time

	// After returns a channel that receives the current time after duration d.
	// The channel receives exactly once.
	After(d time.Duration) <-chan time.Time
}

// Since returns the time elapsed on clk since t.
func Since(clk Clock, t time.Time) time.Duration {
	return clk.Now().Sub(t)
}
