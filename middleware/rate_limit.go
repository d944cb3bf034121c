package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit configures an IPRateLimiter.
type RateLimit struct {
	PerMinute int
	Burst     int
	// IdleTTL is how long an idle client's bucket is kept.
	IdleTTL time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	cfg RateLimit

	mu      sync.Mutex
	buckets map[string]*bucket

	stop chan struct{}
	once sync.Once
}

// NewIPRateLimiter starts a limiter and its sweeper. Call Stop when done.
func NewIPRateLimiter(cfg RateLimit) *IPRateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 5 * time.Minute
	}
	rl := &IPRateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *IPRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if b, ok := rl.buckets[ip]; ok {
		b.lastSeen = now
		return b.limiter
	}
	perSecond := rate.Limit(float64(rl.cfg.PerMinute) / 60.0)
	b := &bucket{limiter: rate.NewLimiter(perSecond, rl.cfg.Burst), lastSeen: now}
	rl.buckets[ip] = b
	return b.limiter
}

// retryAfter takes a token for ip, or reports how long until one is free.
func (rl *IPRateLimiter) retryAfter(ip string) (time.Duration, bool) {
	r := rl.limiterFor(ip).Reserve()
	if !r.OK() {
		return 0, false
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return d, false
	}
	return 0, true
}

func (rl *IPRateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.buckets {
				if time.Since(b.lastSeen) > rl.cfg.IdleTTL {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimitByIP answers 429 with Retry-After once a client's bucket is empty.
// A nil limiter lets everything through.
func RateLimitByIP(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		wait, ok := rl.retryAfter(c.ClientIP())
		if !ok {
			if wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"kind":    "rate_limited",
				"message": "Too Many Requests",
			})
			return
		}
		c.Next()
	}
}
