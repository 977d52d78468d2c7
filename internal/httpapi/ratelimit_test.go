package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(2, time.Minute)
	ctx := context.Background()

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Limit)
	assert.Equal(t, 1, d.Remaining)

	d, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, _ = l.Allow(ctx, "10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Positive(t, d.Reset)

	// Buckets are per client
	d, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, d.Allowed)
}

func TestRateLimitMiddleware_Local(t *testing.T) {
	f := setupTestServer(t, Options{RateLimit: 2, RateWindow: time.Minute})

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decode[ErrorResponse](t, rec).Error)
}

func TestRateLimitMiddleware_RedisFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	f := setupTestServer(t, Options{})
	f.server.deps.Redis = client
	f.server.opts.RateLimit = 1
	limiter := f.server.newLimiter()
	require.IsType(t, &RedisLimiter{}, limiter)

	_, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)

	f.server.engine.GET("/limited", f.server.rateLimit(limiter), f.server.health)
	for i := 0; i < 3; i++ {
		rec := f.do(t, http.MethodGet, "/limited", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	f := setupTestServer(t, Options{})

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
