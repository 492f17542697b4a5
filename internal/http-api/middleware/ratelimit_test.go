package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/token", RateLimit(1, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/auth/token", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestLimiterPoolEvictsIdleClients(t *testing.T) {
	pool := newLimiterPool(1, 1)

	clock := time.Now()
	pool.now = func() time.Time { return clock }

	pool.get("10.0.0.1")
	pool.get("10.0.0.2")
	assert.Equal(t, 2, pool.size())

	// Both go idle past the TTL; the next new client sweeps them out
	clock = clock.Add(idleTTL + time.Minute)
	pool.get("10.0.0.3")
	assert.Equal(t, 1, pool.size())
}

func TestLimiterPoolKeepsActiveClients(t *testing.T) {
	pool := newLimiterPool(1, 1)

	clock := time.Now()
	pool.now = func() time.Time { return clock }

	pool.get("10.0.0.1")

	// Stays active just inside the TTL, so a sweep must not touch it
	clock = clock.Add(idleTTL - time.Minute)
	pool.get("10.0.0.1")

	clock = clock.Add(idleTTL - time.Minute)
	pool.get("10.0.0.2")
	assert.Equal(t, 2, pool.size())

	// Same bucket comes back for a known client
	assert.Same(t, pool.get("10.0.0.1"), pool.get("10.0.0.1"))
}
