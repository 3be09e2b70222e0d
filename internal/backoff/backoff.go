package backoff

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Options bound the retry loop. Delay before attempt k (k>=1) is
// min(BaseDelay * 2^(k-1), MaxDelay).
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Executor retries an operation with exponential delay. The sleep
// suspends only the calling goroutine, so one slow message never stalls
// workers on other partitions.
type Executor struct {
	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor() *Executor {
	return &Executor{sleep: sleepContext}
}

// Execute invokes op up to MaxRetries+1 times and returns the first
// successful result. After exhaustion the last attempt's error is
// returned as-is, never an aggregate.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error, opts Options, label string) error {
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := min(opts.BaseDelay<<(attempt-1), opts.MaxDelay)
			logrus.Infof("%s - attempt %d/%d, waiting %v before retry", label, attempt, opts.MaxRetries, delay)
			if err := e.sleep(ctx, delay); err != nil {
				return err
			}
		}

		if err := op(ctx); err != nil {
			lastErr = err
			logrus.Warnf("%s - attempt %d/%d failed: %v", label, attempt+1, opts.MaxRetries+1, err)
			continue
		}
		return nil
	}

	logrus.Errorf("%s - all retry attempts exhausted", label)
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
