package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/cohesia-portal/pkg/response"
)

// localLimiter keeps one token bucket per key in process memory.
type localLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *localLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle buckets (full of tokens) at most every 5 minutes.
func (l *localLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// LocalRateLimit allows max requests per window per key with a burst of max,
// tracked in memory. Used when no Redis is configured.
func LocalRateLimit(max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	l := &localLimiter{
		rate:        rate.Limit(float64(max) / window.Seconds()),
		burst:       max,
		lastCleanup: time.Now(),
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		lim := l.get(keyFn(c))
		if !lim.Allow() {
			r := lim.Reserve()
			delay := r.Delay()
			r.Cancel()

			retry := int(delay.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-RateLimit-Limit", strconv.Itoa(max))
			response.Fail(c, http.StatusTooManyRequests, MsgRateLimited)
			return
		}
		c.Next()
	}
}

// Limiter picks the Redis limiter when rdb is set and the in-memory one otherwise.
func Limiter(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb != nil {
		return RateLimit(rdb, max, window, keyFn, allow)
	}
	return LocalRateLimit(max, window, keyFn, allow)
}
