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

package lp

import (
	"context"
	"errors"
	"time"

	"github.com/jazzpetri/bisep/clock"
	bctx "github.com/jazzpetri/bisep/context"
)

// RetryPolicy configures WithRetry.
//
// Only errors wrapping ErrOracle are retried, except ErrBudgetExceeded.
// Cancellation and every other error are returned at once. Backoff waits go
// through Clock, so tests can use a VirtualClock.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int

	// Backoff is the delay before the first retry.
	Backoff time.Duration

	// Multiplier scales the delay after each retry. Values below 1 keep the
	// delay constant.
	Multiplier float64

	// Clock is used for backoff waits. Nil means the real-time clock.
	Clock clock.Clock

	// Logger and Metrics observe retries. Nil means NoOp.
	Logger  bctx.Logger
	Metrics bctx.MetricsCollector
}

// delay returns the wait before retry number attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.Backoff
	if p.Multiplier > 1 {
		for i := 1; i < attempt; i++ {
			d = time.Duration(float64(d) * p.Multiplier)
		}
	}
	return d
}

// WithRetry wraps o so that every Check is retried under policy.
func WithRetry(o Oracle, policy RetryPolicy) Oracle {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Clock == nil {
		policy.Clock = clock.NewRealTimeClock()
	}
	if policy.Logger == nil {
		policy.Logger = &bctx.NoOpLogger{}
	}
	if policy.Metrics == nil {
		policy.Metrics = &bctx.NoOpMetrics{}
	}
	return &retryOracle{inner: o, policy: policy}
}

type retryOracle struct {
	inner  Oracle
	policy RetryPolicy
}

func (r *retryOracle) NewSolver(numVars int) Solver {
	return &retrySolver{Solver: r.inner.NewSolver(numVars), policy: r.policy}
}

type retrySolver struct {
	Solver
	policy RetryPolicy
}

// Retryable reports whether err is a transient oracle failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrOracle) && !errors.Is(err, ErrBudgetExceeded)
}

func (s *retrySolver) Check(ctx context.Context) (Status, error) {
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Unsat, err
		}
		status, err := s.Solver.Check(ctx)
		if err == nil {
			if attempt > 1 {
				s.policy.Logger.Info("oracle check succeeded after retries", map[string]interface{}{
					"attempts": attempt,
				})
			}
			return status, nil
		}
		lastErr = err
		if !Retryable(err) {
			return Unsat, err
		}
		s.policy.Metrics.Inc("lp_retries_total")
		if attempt == s.policy.MaxAttempts {
			break
		}
		backoff := s.policy.delay(attempt)
		s.policy.Logger.Warn("oracle check failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"max":     s.policy.MaxAttempts,
			"backoff": backoff.String(),
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return Unsat, ctx.Err()
		case <-s.policy.Clock.After(backoff):
		}
	}
	s.policy.Logger.Error("oracle check failed", map[string]interface{}{
		"attempts": s.policy.MaxAttempts,
		"error":    lastErr.Error(),
	})
	return Unsat, lastErr
}

func (s *retrySolver) Clone() Solver {
	return &retrySolver{Solver: s.Solver.Clone(), policy: s.policy}
}
