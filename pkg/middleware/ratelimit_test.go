package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gear-guard/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	e := echo.New()
	limiter := NewIPRateLimiter(rate.Limit(0.0001), 2)
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(limiter, metrics.New()))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_SeparateIPs(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.0001), 1)

	assert.True(t, limiter.GetLimiter("1.1.1.1").Allow())
	assert.False(t, limiter.GetLimiter("1.1.1.1").Allow())
	assert.True(t, limiter.GetLimiter("2.2.2.2").Allow())
}
