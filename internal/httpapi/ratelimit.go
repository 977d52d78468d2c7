package httpapi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	rateLimitKeyPrefix = "ratelimit:"
	maxTrackedClients  = 10000
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration // Until the client regains capacity
}

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window counter shared by every API instance
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter counting in redis
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow increments the client's counter, starting a new window on the first hit
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	key = rateLimitKeyPrefix + key
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}

	return Decision{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(0, l.limit-int(count)),
		Reset:     ttl,
	}, nil
}

// LocalLimiter is a per-process token bucket per client, used when no redis is configured.
// The least recently seen clients are forgotten once maxTrackedClients is reached.
type LocalLimiter struct {
	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
	limit   int
	every   rate.Limit
}

// NewLocalLimiter allows limit requests per window with bursts up to limit
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	clients, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	return &LocalLimiter{
		clients: clients,
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
	}
}

// Allow takes one token from the client's bucket
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	lim, ok := l.clients.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.every, l.limit)
		l.clients.Add(key, lim)
	}
	l.mu.Unlock()

	now := time.Now()
	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	var reset time.Duration
	if tokens < 1 {
		reset = time.Duration((1 - tokens) / float64(l.every) * float64(time.Second))
	}

	return Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: max(0, int(math.Floor(tokens))),
		Reset:     reset,
	}, nil
}

func (s *Server) newLimiter() Limiter {
	if s.deps.Redis != nil {
		return NewRedisLimiter(s.deps.Redis, s.opts.RateLimit, s.opts.RateWindow)
	}
	return NewLocalLimiter(s.opts.RateLimit, s.opts.RateWindow)
}

// rateLimit rejects clients over their budget. Limiter failures let the request through.
func (s *Server) rateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.logger.Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		reset := int(math.Ceil(d.Reset.Seconds()))
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(reset))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:     "rate limit exceeded",
				RequestID: requestIDFrom(c),
			})
			return
		}
		c.Next()
	}
}
