package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pasteleria/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-IP token bucket ───────────────────────────────────────────────────────

type visitante struct {
	limiter *rate.Limiter
	visto   time.Time
}

// IPLimiter keeps one token bucket per client IP.
type IPLimiter struct {
	mu         sync.Mutex
	visitantes map[string]*visitante
	rps        rate.Limit
	burst      int
	mensaje    string
}

// NewIPLimiter allows rps requests per second per IP with the given burst.
func NewIPLimiter(rps float64, burst int, mensaje string) *IPLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPLimiter{
		visitantes: make(map[string]*visitante),
		rps:        rate.Limit(rps),
		burst:      burst,
		mensaje:    mensaje,
	}
}

func (l *IPLimiter) limiterPara(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitantes[ip]
	if !ok {
		v = &visitante{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitantes[ip] = v
	}
	v.visto = time.Now()
	return v.limiter
}

// Middleware rejects with 429 once the IP's bucket is empty.
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterPara(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Removes IPs idle for longer than ttl so the map does not grow forever.

const purgeInterval = 5 * time.Minute

// StartPurge runs until ctx is done.
func (l *IPLimiter) StartPurge(ctx context.Context, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.purgar(time.Now().Add(-ttl)); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
				}
			}
		}
	}()
}

func (l *IPLimiter) purgar(antesDe time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, v := range l.visitantes {
		if v.visto.Before(antesDe) {
			delete(l.visitantes, ip)
			n++
		}
	}
	return n
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() *IPLimiter {
	return NewIPLimiter(20.0/60.0, 20, "Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(rps float64, burst int) *IPLimiter {
	return NewIPLimiter(rps, burst, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}
