package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iamwhitegod/arena/internal/ports"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 2 * time.Second
)

// RetryPolicy retries rate-limited requests with exponential backoff
// (base delay doubling per attempt), honoring a server-suggested wait when
// one was parseable. Sleep is injectable so tests can run without real
// delays.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := p.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 0; attempt < maxRetries; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		var rl *ports.RateLimitError
		if !errors.As(err, &rl) {
			// Non-rate-limit failures are not retried.
			return "", err
		}
		last = err
		if attempt == maxRetries-1 {
			break
		}
		wait := base * time.Duration(1<<attempt)
		if rl.RetryAfter > 0 {
			wait = rl.RetryAfter
		}
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("rate limit retries exhausted after %d attempts: %w", maxRetries, last)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
