package inaturalist

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultRateLimit is the maximum number of upstream API calls per minute
	DefaultRateLimit = 60
	// RateLimitEnvVar is the environment variable for configuring the per-minute quota
	RateLimitEnvVar = "INATURALIST_RATE_LIMIT"

	rateWindow = time.Minute
)

// limiter bounds outbound calls to at most limit per trailing window.
// Callers over the quota are delayed, never dropped or rejected. A slot is
// reserved under the lock at check time, so a burst of concurrent callers
// cannot all pass the check before any of them records a timestamp.
type limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// rateLimitFromEnv returns the configured per-minute quota
func rateLimitFromEnv() int {
	if envValue := os.Getenv(RateLimitEnvVar); envValue != "" {
		if value, err := strconv.Atoi(envValue); err == nil && value > 0 {
			return value
		}
	}
	return DefaultRateLimit
}

func newLimiter(limit int, window time.Duration) *limiter {
	return &limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// wait blocks until one more upstream call fits within the quota. The only
// error it can return is a cancelled context; the limiter itself never fails.
func (l *limiter) wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()

	kept := l.stamps[:0]
	for _, stamp := range l.stamps {
		if now.Sub(stamp) < l.window {
			kept = append(kept, stamp)
		}
	}
	l.stamps = kept

	var wait time.Duration
	if len(l.stamps) >= l.limit {
		// The call may proceed once the stamp `limit` places from the end
		// falls out of the window.
		oldest := l.stamps[len(l.stamps)-l.limit]
		wait = l.window - now.Sub(oldest)
		if wait < 0 {
			wait = 0
		}
	}
	l.stamps = append(l.stamps, now.Add(wait))
	l.mu.Unlock()

	if wait > 0 {
		return l.sleep(ctx, wait)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
