package middlewares

import (
	"context"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/gate/internal"
)

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// TokenBucket is an in-process keyed limiter. Each key gets its own
// token bucket; idle buckets are evicted after an hour so the map does
// not grow with the client population.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucketEntry
	rps     rate.Limit
	burst   int
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const bucketIdleEviction = time.Hour

// NewTokenBucket builds a limiter refilling at rps with the given burst.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	return &TokenBucket{
		buckets: make(map[string]*bucketEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (t *TokenBucket) Allow(ctx context.Context, key string) (Decision, error) {
	t.mu.Lock()
	entry, ok := t.buckets[key]
	if !ok {
		entry = &bucketEntry{lim: rate.NewLimiter(t.rps, t.burst)}
		t.buckets[key] = entry
	}
	entry.lastSeen = time.Now()
	if len(t.buckets) > 1 && !ok {
		t.evictStaleLocked()
	}
	t.mu.Unlock()

	res := entry.lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return Decision{RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

func (t *TokenBucket) evictStaleLocked() {
	cutoff := time.Now().Add(-bucketIdleEviction)
	for key, entry := range t.buckets {
		if entry.lastSeen.Before(cutoff) {
			delete(t.buckets, key)
		}
	}
}

// RateLimitConfig configures the middleware around a Limiter.
type RateLimitConfig struct {
	// KeyFunc derives the limiter key. Defaults to client IP.
	KeyFunc func(c internal.Context) string

	// ExcludedPaths bypass limiting entirely (health probes).
	ExcludedPaths []string

	// FailOpen lets requests through when the limiter itself errors
	// (e.g. redis unreachable). Default true: availability over strict
	// throttling.
	FailOpen bool
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKeyFunc overrides the key derivation.
func WithRateLimitKeyFunc(fn func(c internal.Context) string) RateLimitOption {
	return func(cfg *RateLimitConfig) { cfg.KeyFunc = fn }
}

// WithRateLimitExcludedPaths sets paths that bypass limiting.
func WithRateLimitExcludedPaths(paths ...string) RateLimitOption {
	return func(cfg *RateLimitConfig) { cfg.ExcludedPaths = paths }
}

// WithRateLimitFailClosed rejects requests when the limiter errors.
func WithRateLimitFailClosed() RateLimitOption {
	return func(cfg *RateLimitConfig) { cfg.FailOpen = false }
}

// RateLimit throttles requests per key. Rejected requests get a 429 with
// a Retry-After header; authenticated requests are keyed by user ID, the
// rest by client IP.
func RateLimit(limiter Limiter, opts ...RateLimitOption) internal.Middleware {
	cfg := &RateLimitConfig{
		KeyFunc: func(c internal.Context) string {
			if uid := c.UserID(); uid != "" {
				return "user:" + uid
			}
			return "ip:" + c.ClientIP()
		},
		ExcludedPaths: []string{"/health/live", "/health/ready"},
		FailOpen:      true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if slices.Contains(cfg.ExcludedPaths, c.Request().URL.Path) {
				return next(c)
			}

			decision, err := limiter.Allow(c.Context(), cfg.KeyFunc(c))
			if err != nil {
				if cfg.FailOpen {
					c.LogWarn("rate limiter unavailable, failing open", "error", err.Error())
					return next(c)
				}
				return internal.ErrTooManyRequests("rate limiter unavailable", internal.WithError(err))
			}
			if !decision.Allowed {
				if decision.RetryAfter > 0 {
					seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
					c.SetHeader("Retry-After", strconv.Itoa(seconds))
				}
				return internal.ErrTooManyRequests("rate limit exceeded")
			}

			return next(c)
		}
	}
}
