package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleTTL is how long a client may stay quiet before its limiter is dropped.
const idleTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP. Idle entries are
// swept whenever a new client shows up, so the map stays bounded by the set
// of recently active clients.
type limiterPool struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	now     func() time.Time
	clients map[string]*client
}

func newLimiterPool(rps rate.Limit, burst int) *limiterPool {
	return &limiterPool{
		rps:     rps,
		burst:   burst,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if c, ok := p.clients[ip]; ok {
		c.lastSeen = now
		return c.limiter
	}

	// Sweep idle entries before growing the map
	for key, c := range p.clients {
		if now.Sub(c.lastSeen) > idleTTL {
			delete(p.clients, key)
		}
	}

	c := &client{limiter: rate.NewLimiter(p.rps, p.burst), lastSeen: now}
	p.clients[ip] = c
	return c.limiter
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// RateLimit applies a per-client-IP token bucket. Used on the auth endpoints
// to slow down code guessing and signup floods.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rps, burst)

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
