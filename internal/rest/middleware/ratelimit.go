package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"golang.org/x/time/rate"
)

const (
	defaultLoginAttemptsPerMinute = 10
	limiterIdleTimeout            = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client ip
type IPRateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
	lastScan time.Time
}

// NewIPRateLimiter allows perMinute requests a minute per ip, all of them in a burst
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = defaultLoginAttemptsPerMinute
	}
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

// Allow consumes one token of ip
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastScan) < limiterIdleTimeout {
		return
	}
	l.lastScan = now
	for ip, client := range l.clients {
		if now.Sub(client.lastSeen) > limiterIdleTimeout {
			delete(l.clients, ip)
		}
	}
}

// RateLimitMiddleware rejects clients that ran out of tokens with a 429
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			_ = c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many attempts, please wait a minute and try again").
				WithReportableDetails(map[string]any{"client_ip": c.ClientIP()}).
				Mark(ierr.ErrTooManyRequests))
			c.Abort()
			return
		}
		c.Next()
	}
}
