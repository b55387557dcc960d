package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/drivevault/pkg/configs"
)

const (
	limiterSweepInterval = 10 * time.Minute
	limiterMaxEntries    = 10000
)

// RateLimitMiddleware 按配置限流.key 维度支持 global、ip 与 header:<name>，
// header 取不到值时退回客户端 IP.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "" || keyMode == "global" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}

			c.Next()
		}
	}

	pool := newLimiterPool(cfg.RPS, cfg.Burst)

	return func(c *gin.Context) {
		key := limitKey(c, keyMode)

		if !pool.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "rate limit exceeded, request too frequent, please try again later"})

			return
		}

		c.Next()
	}
}

// limiterPool 按 key 维护独立 limiter，条目过多时整体重置.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	p := &limiterPool{
		limiters: map[string]*rate.Limiter{},
		rps:      rps,
		burst:    burst,
	}

	go p.sweep()

	return p
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.limiters[key]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.limiters[key] = l

	return l
}

// sweep 不记录逐键的访问时间，仅在条目超限时丢弃整个 map.
func (p *limiterPool) sweep() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if len(p.limiters) > limiterMaxEntries {
			p.limiters = map[string]*rate.Limiter{}
		}
		p.mu.Unlock()
	}
}

func limitKey(c *gin.Context, keyMode string) string {
	var key string

	switch {
	case strings.HasPrefix(keyMode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(keyMode, "header:"))
		if key == "" {
			key = clientIP(c)
		}
	default:
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
