package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"parquet-dataset/internal/utils"
	"parquet-dataset/pkg/response"
)

type RateLimiterConfig struct {
	// Requests per minute
	RPM   int `json:"rpm"`
	Burst int `json:"burst"`
	// Clients idle for longer than this are forgotten.
	CleanupInterval time.Duration `json:"cleanupInterval"`
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RPM:             60,
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	config  RateLimiterConfig
	clients map[string]*clientLimiter
	mutex   sync.Mutex
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter whose idle-client sweep runs until ctx is
// cancelled.
func NewRateLimiter(ctx context.Context, config RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if config.RPM <= 0 {
		config.RPM = def.RPM
	}
	if config.Burst <= 0 {
		config.Burst = def.Burst
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := rl.client(rl.getClientID(c))

		if !client.Allow() {
			rl.rateLimitExceeded(c)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.RPM))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(client.Tokens())))
		c.Next()
	}
}

func (rl *RateLimiter) client(id string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cl, ok := rl.clients[id]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.config.RPM)), rl.config.Burst),
		}
		rl.clients[id] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// getClientID prefers an API key over the client IP.
func (rl *RateLimiter) getClientID(c *gin.Context) string {
	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		return "apikey:" + apiKey
	}
	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = "unknown"
	}
	return "ip:" + clientIP
}

func (rl *RateLimiter) rateLimitExceeded(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse(
		utils.ErrCodeRateLimitExceeded,
		"Rate limit exceeded. Please try again later.",
		"Maximum "+strconv.Itoa(rl.config.RPM)+" requests per minute allowed",
		GetCorrelationID(c),
	))
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mutex.Lock()
			for id, client := range rl.clients {
				if now.Sub(client.lastSeen) > rl.config.CleanupInterval {
					delete(rl.clients, id)
				}
			}
			rl.mutex.Unlock()
		}
	}
}

type RateLimitStats struct {
	ActiveClients int               `json:"activeClients"`
	Config        RateLimiterConfig `json:"config"`
}

func (rl *RateLimiter) GetStats() RateLimitStats {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return RateLimitStats{
		ActiveClients: len(rl.clients),
		Config:        rl.config,
	}
}
