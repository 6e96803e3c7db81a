package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/remote"
)

// The backend enforces a low per-application request ceiling, so throttled
// calls back off 30, 60, 120, 240, 480 seconds across at most five attempts
// unless the server names its own retry-after.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 30 * time.Second
)

// ErrExhausted marks a call that was still throttled after the attempt
// budget was spent.
var ErrExhausted = errors.New("retry attempts exhausted")

// Caller wraps a single remote call with rate-limit-aware backoff. Only
// throttling signals are retried; any other failure propagates immediately
// so validation and logic errors never hide behind a backoff loop.
type Caller struct {
	Clock       clock.Clock
	Log         core.Logger
	MaxAttempts int
	BaseDelay   time.Duration
}

func NewCaller(clk clock.Clock, log core.Logger) *Caller {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = core.NoOpLogger{}
	}
	return &Caller{
		Clock:       clk,
		Log:         log,
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
	}
}

// Call invokes op until it succeeds, fails fatally, or the attempt budget is
// spent. It returns the number of attempts actually made. Waits abort early
// when ctx is cancelled.
func (c *Caller) Call(ctx context.Context, desc string, op func() error) (int, error) {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = op()
		if err == nil {
			c.Log.Debug(fmt.Sprintf("%s: ok", desc), "attempt", attempt+1)
			return attempt + 1, nil
		}
		if !remote.IsRateLimited(err) {
			c.Log.Error(fmt.Sprintf("%s: %v", desc, err), "attempt", attempt+1)
			return attempt + 1, err
		}
		if attempt == maxAttempts-1 {
			break
		}

		wait := c.BaseDelay << attempt
		if ra, ok := remote.RetryAfterOf(err); ok {
			wait = ra
		}
		c.Log.Warn(fmt.Sprintf("%s: throttled, waiting %s", desc, wait),
			"attempt", attempt+1, "wait", wait.String())

		select {
		case <-c.Clock.After(wait):
		case <-ctx.Done():
			return attempt + 1, ctx.Err()
		}
	}

	c.Log.Error(fmt.Sprintf("%s: still throttled after %d attempts", desc, maxAttempts))
	return maxAttempts, fmt.Errorf("%s after %d attempts: %w: %w", desc, maxAttempts, ErrExhausted, err)
}
