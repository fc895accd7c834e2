package inaturalist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limiterHarness drives a limiter with a fake clock. Sleeps are recorded and
// advance the clock instead of blocking.
type limiterHarness struct {
	limiter *limiter
	now     time.Time
	slept   []time.Duration
}

func newLimiterHarness(limit int) *limiterHarness {
	h := &limiterHarness{now: time.Unix(1700000000, 0)}
	l := newLimiter(limit, time.Minute)
	l.now = func() time.Time { return h.now }
	l.sleep = func(_ context.Context, d time.Duration) error {
		h.slept = append(h.slept, d)
		h.now = h.now.Add(d)
		return nil
	}
	h.limiter = l
	return h
}

func (h *limiterHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func TestLimiterUnderQuotaDoesNotDelay(t *testing.T) {
	h := newLimiterHarness(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.limiter.wait(context.Background()))
		h.advance(time.Second)
	}

	assert.Empty(t, h.slept)
}

func TestLimiterDelaysAtQuota(t *testing.T) {
	h := newLimiterHarness(3)

	// Three calls one second apart fill the quota; the fourth must wait until
	// the first stamp leaves the 60s window.
	for i := 0; i < 3; i++ {
		require.NoError(t, h.limiter.wait(context.Background()))
		h.advance(time.Second)
	}
	require.NoError(t, h.limiter.wait(context.Background()))

	require.Len(t, h.slept, 1)
	assert.Equal(t, 57*time.Second, h.slept[0])
}

func TestLimiterPrunesExpiredStamps(t *testing.T) {
	h := newLimiterHarness(2)

	require.NoError(t, h.limiter.wait(context.Background()))
	require.NoError(t, h.limiter.wait(context.Background()))
	h.advance(61 * time.Second)
	require.NoError(t, h.limiter.wait(context.Background()))

	assert.Empty(t, h.slept)
	assert.Len(t, h.limiter.stamps, 1)
}

func TestLimiterLogStaysBounded(t *testing.T) {
	h := newLimiterHarness(5)

	for i := 0; i < 20; i++ {
		require.NoError(t, h.limiter.wait(context.Background()))
	}

	assert.LessOrEqual(t, len(h.limiter.stamps), 6)
}

func TestLimiterNeverRejects(t *testing.T) {
	h := newLimiterHarness(1)

	for i := 0; i < 10; i++ {
		assert.NoError(t, h.limiter.wait(context.Background()))
	}
	assert.Len(t, h.slept, 9)
}

func TestLimiterCancelledContext(t *testing.T) {
	l := newLimiter(1, time.Minute)
	require.NoError(t, l.wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv(RateLimitEnvVar, "")
	assert.Equal(t, DefaultRateLimit, rateLimitFromEnv())

	t.Setenv(RateLimitEnvVar, "30")
	assert.Equal(t, 30, rateLimitFromEnv())

	t.Setenv(RateLimitEnvVar, "-1")
	assert.Equal(t, DefaultRateLimit, rateLimitFromEnv())

	t.Setenv(RateLimitEnvVar, "invalid")
	assert.Equal(t, DefaultRateLimit, rateLimitFromEnv())
}
