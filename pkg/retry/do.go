// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retry runs an operation until it succeeds, its attempts run out or the
// context ends.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Backoff returns the wait before retry number attempt, starting at 0.
type Backoff func(attempt int) time.Duration

func Fixed(interval time.Duration) Backoff {
	return func(int) time.Duration { return interval }
}

// Exponential doubles base on every attempt, capped at max when max > 0.
func Exponential(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base << min(attempt, 30)
		if d <= 0 || (max > 0 && d > max) {
			return max
		}
		return d
	}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type config struct {
	attempts int
	backoff  Backoff
	jitter   float64
	onRetry  func(attempt int, err error, wait time.Duration)
}

type Option func(*config)

// WithAttempts sets the total number of calls, the first one included.
func WithAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.attempts = n
		}
	}
}

func WithBackoff(b Backoff) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithJitter randomizes each wait by up to fraction of its length, in either direction.
func WithJitter(fraction float64) Option {
	return func(c *config) {
		c.jitter = max(0, min(fraction, 1))
	}
}

// OnRetry is called before every wait.
func OnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}

func (c *config) wait(attempt int) time.Duration {
	d := c.backoff(attempt)
	if c.jitter > 0 && d > 0 {
		delta := (rand.Float64()*2 - 1) * c.jitter * float64(d)
		d += time.Duration(delta)
	}
	return max(d, 0)
}

// Do calls fn until it returns nil. Context errors and errors marked with
// Permanent stop immediately; otherwise the last error is returned once the
// attempts are used up.
func Do(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	cfg := &config{attempts: 3, backoff: Fixed(time.Second)}
	for _, opt := range opts {
		opt(cfg)
	}

	var err error
	for attempt := 0; attempt < cfg.attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == cfg.attempts-1 {
			break
		}

		wait := cfg.wait(attempt)
		if cfg.onRetry != nil {
			cfg.onRetry(attempt+1, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return err
}
