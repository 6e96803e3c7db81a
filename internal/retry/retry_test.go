package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verkeep/verkeep/internal/remote"
	"github.com/verkeep/verkeep/internal/retry"
)

// fakeClock records requested waits and fires them immediately, so backoff
// sequences can be asserted without real sleeping.
type fakeClock struct {
	now   time.Time
	waits []time.Duration
	block bool
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.waits = append(f.waits, d)
	ch := make(chan time.Time, 1)
	if !f.block {
		ch <- f.now.Add(d)
	}
	return ch
}

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	fn()
	return fakeTimer{}
}

func (f *fakeClock) NewTimer(d time.Duration) clock.Timer { return fakeTimer{} }

type fakeTimer struct{}

func (fakeTimer) Chan() <-chan time.Time   { return nil }
func (fakeTimer) Reset(time.Duration) bool { return false }
func (fakeTimer) Stop() bool               { return false }

func throttle() error {
	return &remote.RateLimitError{}
}

func TestCallBacksOffThenSucceeds(t *testing.T) {
	clk := &fakeClock{}
	caller := retry.NewCaller(clk, nil)

	calls := 0
	attempts, err := caller.Call(context.Background(), "set policy", func() error {
		calls++
		if calls < 5 {
			return throttle()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{
		30 * time.Second,
		60 * time.Second,
		120 * time.Second,
		240 * time.Second,
	}, clk.waits)
}

func TestCallHonorsServerRetryAfter(t *testing.T) {
	clk := &fakeClock{}
	caller := retry.NewCaller(clk, nil)

	calls := 0
	_, err := caller.Call(context.Background(), "set policy", func() error {
		calls++
		if calls == 1 {
			return &remote.RateLimitError{RetryAfter: 7 * time.Second, HasRetryAfter: true}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{7 * time.Second}, clk.waits)
}

func TestCallExhaustsAfterFiveAttempts(t *testing.T) {
	clk := &fakeClock{}
	caller := retry.NewCaller(clk, nil)

	calls := 0
	attempts, err := caller.Call(context.Background(), "set policy", func() error {
		calls++
		return throttle()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, calls, "no sixth attempt may be made")
	// No sleep after the final attempt.
	assert.Len(t, clk.waits, 4)
}

func TestCallPropagatesFatalImmediately(t *testing.T) {
	clk := &fakeClock{}
	caller := retry.NewCaller(clk, nil)

	fault := &remote.FaultError{Status: 403, Detail: "access denied"}
	calls := 0
	attempts, err := caller.Call(context.Background(), "set policy", func() error {
		calls++
		return fault
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, retry.ErrExhausted)
	var f *remote.FaultError
	assert.ErrorAs(t, err, &f)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clk.waits)
}

func TestCallAbortsWaitOnCancel(t *testing.T) {
	clk := &fakeClock{block: true}
	caller := retry.NewCaller(clk, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := caller.Call(ctx, "set policy", func() error {
		return throttle()
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallErrorKeepsLastCause(t *testing.T) {
	clk := &fakeClock{}
	caller := retry.NewCaller(clk, nil)

	_, err := caller.Call(context.Background(), "set policy", func() error {
		return throttle()
	})

	require.Error(t, err)
	assert.True(t, remote.IsRateLimited(err), "exhaustion should still expose the throttling cause")
	assert.True(t, errors.Is(err, retry.ErrExhausted))
}
