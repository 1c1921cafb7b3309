package middleware

import (
	"net/http"
	"sync"
	"time"

	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPLimiter IP 별 토큰 버킷
type IPLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute int
	burst     int
	idle      time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPLimiter(perMinute, burst int) *IPLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &IPLimiter{limiters: make(map[string]*limiterEntry), perMinute: perMinute, burst: burst, idle: 10 * time.Minute}
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (l *IPLimiter) Allow(ip string) bool { return l.get(ip).Allow() }

// Sweep idle 보다 오래 쓰이지 않은 항목 제거
func (l *IPLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, e := range l.limiters {
		if time.Since(e.lastSeen) > l.idle {
			delete(l.limiters, ip)
			n++
		}
	}
	return n
}

// RateLimit 초과 시 429 RATE_LIMITED
func RateLimit(l *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.Allow(c.ClientIP()) {
			response.Abort(c, http.StatusTooManyRequests, retcode.RATE_LIMITED, "", nil)
			return
		}
		c.Next()
	}
}
