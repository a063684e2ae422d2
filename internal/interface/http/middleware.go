package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/astroml/internal/infra/config"
)

// errorHandlingMiddleware renders the last handler error as the JSON error
// envelope, tagged with the reading session when the route carries one.
func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		attrs := []any{"code", httpErr.Code, "status", httpErr.Status, "method", c.Request.Method, "path", c.FullPath()}
		if session := c.Param("id"); session != "" {
			attrs = append(attrs, "session", session)
		}
		switch {
		case httpErr.Status >= http.StatusInternalServerError:
			logger.Error("reading request failed", append(attrs, "error", httpErr.Err)...)
		case httpErr.Status == http.StatusConflict:
			// Expected while a session is processing or a daily reading is pending.
			logger.Info("reading request conflicts with session state", append(attrs, "error", httpErr.Err)...)
		default:
			logger.Warn("reading request rejected", append(attrs, "error", httpErr.Err)...)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// generationLimit guards the routes that start a session or call the
// generation endpoint. Snapshot polling, export and reset stay unmetered so a
// client polling during processing never exhausts its budget.
func generationLimit(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newIPRateLimiter(cfg)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, wait := limiter.allow(ip)
		if ok {
			c.Next()
			return
		}
		logger.Warn("generation rate limit exceeded", "ip", ip, "path", c.FullPath(), "retry_after_s", retryAfterSeconds(wait))
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many readings requested, try again shortly", nil))
	}
}

func retryAfterSeconds(wait time.Duration) int {
	return int(math.Max(1, math.Ceil(wait.Seconds())))
}

// ipRateLimiter is a token bucket per client address. Idle buckets are swept.
type ipRateLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	ratePerMinute float64
	burst         float64
	idle          time.Duration
	now           func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newIPRateLimiter(cfg config.RateLimitConfig) *ipRateLimiter {
	return &ipRateLimiter{
		buckets:       make(map[string]*bucket),
		ratePerMinute: float64(cfg.RequestsPerMinute),
		burst:         float64(cfg.Burst),
		idle:          5 * time.Minute,
		now:           time.Now,
	}
}

// allow spends one token for ip. When none is left it reports how long until
// the next token refills.
func (l *ipRateLimiter) allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweepLocked(now)

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: l.burst}
		l.buckets[ip] = b
	} else if elapsed := now.Sub(b.seen).Minutes(); elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+elapsed*l.ratePerMinute)
	}
	b.seen = now

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, time.Duration(missing * float64(time.Minute) / l.ratePerMinute)
	}
	b.tokens--
	return true, 0
}

func (l *ipRateLimiter) sweepLocked(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.seen) > l.idle {
			delete(l.buckets, ip)
		}
	}
}
