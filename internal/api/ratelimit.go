package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client bucket survives without traffic
// before the sweep reclaims it.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// sweepIdle removes buckets that have not been touched within the TTL,
// keeping the table bounded by recent clients rather than every IP ever
// seen.
func sweepIdle(clients map[string]*clientLimiter, now time.Time) {
	for ip, cl := range clients {
		if now.Sub(cl.seen) > limiterIdleTTL {
			delete(clients, ip)
		}
	}
}

// perClientLimit keeps one token bucket per client IP for the turn
// endpoint. Turns are cheap but spammable; 5 per second with a small
// burst is far above any human play rate.
func perClientLimit() fiber.Handler {
	var (
		mu        sync.Mutex
		clients   = map[string]*clientLimiter{}
		lastSweep = time.Now()
	)

	return func(c *fiber.Ctx) error {
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > limiterIdleTTL {
			sweepIdle(clients, now)
			lastSweep = now
		}
		cl, ok := clients[c.IP()]
		if !ok {
			cl = &clientLimiter{lim: rate.NewLimiter(rate.Limit(5), 10)}
			clients[c.IP()] = cl
		}
		cl.seen = now
		mu.Unlock()

		if !cl.lim.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "slow down"})
		}
		return c.Next()
	}
}
