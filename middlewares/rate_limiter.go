package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/utils"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter -> token bucket per IP
type RateLimiter struct {
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	visitors map[string]*visitor
	mu       sync.Mutex
	message  string
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rate:     rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		visitors: make(map[string]*visitor),
		message:  "Too many requests, please slow down",
	}
}

// NewStrictRateLimiter -> lebih ketat untuk endpoint login/register (5 request per menit)
func NewStrictRateLimiter() *RateLimiter {
	rl := NewRateLimiter(float64(rate.Every(time.Minute)), 5)
	rl.message = "Terlalu banyak percobaan, silakan tunggu beberapa saat"
	return rl
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	// buang visitor yang sudah lama tidak aktif
	for key, other := range rl.visitors {
		if now.Sub(other.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
	return v.limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.JSONResponse{
				StatusCode: http.StatusTooManyRequests,
				Meta: utils.Meta{
					Success:   false,
					Message:   rl.message,
					Path:      c.Request.URL.RequestURI(),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				},
			})
			return
		}
		c.Next()
	}
}
