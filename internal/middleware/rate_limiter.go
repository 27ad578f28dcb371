package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"precomed/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// janelaIP counts the requests of one client IP inside a fixed window.
type janelaIP struct {
	count     int
	windowEnd time.Time
}

// limitador holds the per-IP windows of one RateLimiter. Expired entries are purged
// inline, at most once per purgeInterval.
type limitador struct {
	mu           sync.Mutex
	janelas      map[string]*janelaIP
	limit        int
	window       time.Duration
	proximaPurga time.Time
	agora        func() time.Time
}

const purgeInterval = 5 * time.Minute

func novoLimitador(limit int, window time.Duration) *limitador {
	return &limitador{
		janelas: make(map[string]*janelaIP),
		limit:   limit,
		window:  window,
		agora:   time.Now,
	}
}

// permitir registers one request from ip and reports whether it fits the window. The
// returned time is when the current window ends.
func (l *limitador) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.agora()
	if now.After(l.proximaPurga) {
		l.purgar(now)
	}

	j, ok := l.janelas[ip]
	if !ok || now.After(j.windowEnd) {
		j = &janelaIP{windowEnd: now.Add(l.window)}
		l.janelas[ip] = j
	}
	j.count++
	return j.count <= l.limit, j.windowEnd
}

func (l *limitador) purgar(now time.Time) {
	purged := 0
	for ip, j := range l.janelas {
		if now.After(j.windowEnd) {
			delete(l.janelas, ip)
			purged++
		}
	}
	l.proximaPurga = now.Add(purgeInterval)
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.janelas)).Msg("rate limiter purged")
	}
}

// RateLimiter allows limit requests per window for each client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return rateLimiter(novoLimitador(limit, window))
}

func rateLimiter(l *limitador) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fim := l.permitir(c.ClientIP())
		if !ok {
			secs := int(fim.Sub(l.agora()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas requisições. Tente novamente em instantes."))
			return
		}
		c.Next()
	}
}
