package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/entity"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	enabled  bool
	now      func() time.Time
	stop     chan struct{}
	logger   *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *RateLimiter {
	rl := newRateLimiter(cfg.RateLimit, logger)

	if rl.enabled {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go rl.cleanupVisitors()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				close(rl.stop)
				return nil
			},
		})
	}

	return rl
}

func newRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
		enabled:  cfg.Enabled && cfg.RPS > 0,
		now:      time.Now,
		stop:     make(chan struct{}),
		logger:   logger,
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = &visitor{limiter, rl.now()}
		return limiter
	}

	v.lastSeen = rl.now()
	return v.limiter
}

// cleanupVisitors drops visitors not seen within visitorTTL
func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

func (rl *RateLimiter) evictStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// Handler rejects requests over the per-IP limit with 429
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.enabled {
			return c.Next()
		}

		limiter := rl.getVisitor(c.IP())
		if !limiter.Allow() {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(1))
			return c.Status(fiber.StatusTooManyRequests).JSON(
				entity.NewErrorResponse("Too many requests, please try again later", nil),
			)
		}

		return c.Next()
	}
}
