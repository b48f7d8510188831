package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// 填充令牌
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// idle 上次使用时间早于 cutoff
func (tb *TokenBucket) idle(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill.Before(cutoff)
}

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Rate       float64                   // 每秒允许的请求数
	Burst      int                       // 允许的突发请求数
	ExpiryTime time.Duration             // 闲置多久后回收限流器
	KeyFunc    func(*gin.Context) string // 限流键, 默认按IP和路径组合
}

// DefaultRateLimiterConfig 默认限流器配置
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       1,
	Burst:      5,
	ExpiryTime: time.Hour,
}

type limiterSet struct {
	cfg       RateLimiterConfig
	mu        sync.Mutex
	limiters  map[string]*TokenBucket
	lastSweep time.Time
}

func (s *limiterSet) get(key string) *TokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	// 回收闲置的限流器
	if now.Sub(s.lastSweep) > s.cfg.ExpiryTime {
		cutoff := now.Add(-s.cfg.ExpiryTime)
		for k, l := range s.limiters {
			if l.idle(cutoff) {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	limiter, ok := s.limiters[key]
	if !ok {
		limiter = NewTokenBucket(s.cfg.Rate, s.cfg.Burst)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimiter 创建限流中间件
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	cfg := DefaultRateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	// 确保配置有效
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.ExpiryTime <= 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string {
			return c.ClientIP() + ":" + c.FullPath()
		}
	}

	set := &limiterSet{cfg: cfg, limiters: make(map[string]*TokenBucket), lastSweep: time.Now()}

	return func(c *gin.Context) {
		if !set.get(cfg.KeyFunc(c)).Allow() {
			response.Fail(c, code.ErrTooManyRequests, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:    rate,
		Burst:   burst,
		KeyFunc: func(c *gin.Context) string { return c.ClientIP() },
	})
}

// CombinedRateLimiter 按IP和路径组合限流
func CombinedRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst})
}
