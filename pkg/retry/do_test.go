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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	}, WithAttempts(5), WithBackoff(Fixed(time.Millisecond)), OnRetry(func(attempt int, err error, _ time.Duration) {
		retried = append(retried, attempt)
		assert.ErrorIs(t, err, errBoom)
	}))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	}, WithAttempts(4), WithBackoff(Fixed(0)))

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 4, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errBoom)
	}, WithAttempts(5), WithBackoff(Fixed(0)))

	assert.Equal(t, errBoom, err)
	assert.Equal(t, 1, calls)
	assert.Nil(t, Permanent(nil))
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errBoom
	}, WithAttempts(5), WithBackoff(Fixed(time.Hour)))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)

	err = Do(ctx, func(context.Context) error {
		t.Fatal("must not be called with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoDoesNotRetryDeadline(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return context.DeadlineExceeded
	}, WithAttempts(3), WithBackoff(Fixed(0)))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestExponential(t *testing.T) {
	b := Exponential(100*time.Millisecond, time.Second)
	assert.Equal(t, 100*time.Millisecond, b(0))
	assert.Equal(t, 200*time.Millisecond, b(1))
	assert.Equal(t, 800*time.Millisecond, b(3))
	assert.Equal(t, time.Second, b(4))
	assert.Equal(t, time.Second, b(200))
}

func TestJitterStaysInBounds(t *testing.T) {
	cfg := &config{backoff: Fixed(100 * time.Millisecond)}
	WithJitter(0.5)(cfg)
	for i := 0; i < 100; i++ {
		d := cfg.wait(0)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}
