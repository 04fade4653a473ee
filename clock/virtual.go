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

package clock

import (
	"sync"
	"time"
)

// VirtualClock is a Clock whose time only moves when someone waits on it.
// Every call to After advances the virtual time by the requested duration and
// returns an already-fired channel, so code that backs off between attempts
// runs without real delays while the elapsed virtual time stays observable.
//
// VirtualClock is safe for concurrent use by multiple goroutines.
type VirtualClock struct {
	mu      sync.Mutex
	current time.Time
	waits   []time.Duration
}

// NewVirtualClock creates a virtual clock starting at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{current: start}
}

// Now returns the current virtual time.
func (v *VirtualClock) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// After advances the clock by d (when positive), records the wait and
// returns a channel that already holds the new time.
func (v *VirtualClock) After(d time.Duration) <-chan time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d > 0 {
		v.current = v.current.Add(d)
	}
	v.waits = append(v.waits, d)

	ch := make(chan time.Time, 1)
	ch <- v.current
	close(ch)
	return ch
}

// AdvanceBy moves the clock forward by d without recording a wait.
// Non-positive durations are ignored.
func (v *VirtualClock) AdvanceBy(d time.Duration) {
	if d <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = v.current.Add(d)
}

// Waits returns a copy of the durations passed to After, in call order.
func (v *VirtualClock) Waits() []time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]time.Duration, len(v.waits))
	copy(out, v.waits)
	return out
}
