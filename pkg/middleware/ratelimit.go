package middleware

import (
	"net/http"
	"sync"

	"gear-guard/pkg/metrics"
	"gear-guard/pkg/utils"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// IPRateLimiter хранит отдельный limiter на каждый IP.
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.RWMutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.ips[ip]
	i.mu.RUnlock()
	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if limiter, exists = i.ips[ip]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(i.r, i.b)
	i.ips[ip] = limiter
	return limiter
}

// RateLimit отвечает 429, когда IP превысил лимит.
func RateLimit(limiter *IPRateLimiter, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.GetLimiter(c.RealIP()).Allow() {
				m.RateLimitHit(c.Path())
				return c.JSON(http.StatusTooManyRequests, utils.HTTPResponse{
					Status:  false,
					Message: "Слишком много попыток, повторите позже",
				})
			}
			return next(c)
		}
	}
}
