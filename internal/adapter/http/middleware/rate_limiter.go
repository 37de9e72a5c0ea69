package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"tasksapi/internal/adapter/http/helper"
	"tasksapi/internal/core/telemetry"
	"tasksapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	keyTypeIP   = "ip"
	keyTypeUser = "user"
)

// RateLimitRule allows Requests hits per Window for every key KeyFunc
// derives from a request.
type RateLimitRule struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) (string, string)
}

type RateLimiter struct {
	store   RateLimitStore
	rules   map[string]RateLimitRule
	read    RateLimitRule
	write   RateLimitRule
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
}

// NewRateLimiter limits the token endpoint per client ip, and reads and
// writes on the resource routes per authenticated user. metrics may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, store RateLimitStore, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		store: store,
		rules: map[string]RateLimitRule{
			"POST /api-token-auth/": {
				Requests: cfg.AuthRequests,
				Window:   cfg.Window,
				KeyFunc:  clientIPKey,
			},
		},
		read: RateLimitRule{
			Requests: cfg.ReadRequests,
			Window:   cfg.Window,
			KeyFunc:  userKey,
		},
		write: RateLimitRule{
			Requests: cfg.Requests,
			Window:   cfg.Window,
			KeyFunc:  userKey,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// SetRule overrides the rule of one "METHOD /route" pair.
func (rl *RateLimiter) SetRule(methodPath string, rule RateLimitRule) {
	rl.rules[methodPath] = rule
}

func (rl *RateLimiter) ruleFor(c *gin.Context, methodPath string) RateLimitRule {
	if rule, ok := rl.rules[methodPath]; ok {
		return rule
	}

	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return rl.read
	default:
		return rl.write
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path
		rule := rl.ruleFor(c, methodPath)
		identifier, keyType := rule.KeyFunc(c)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, identifier)

		count, resetTime, err := rl.store.Increment(c.Request.Context(), key, rule.Window)
		if err != nil {
			rl.logger.Error("Rate limit check failed",
				zap.String("key", key),
				zap.String("path", path),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := rule.Requests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count > rule.Requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
			}

			retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", rule.Requests),
				zap.Duration("window", rule.Window))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			helper.SendDetail(c, http.StatusTooManyRequests,
				fmt.Sprintf("%s Expected available in %d seconds.", helper.MessageThrottled, retryAfter))
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		}

		c.Next()
	}
}

func clientIPKey(c *gin.Context) (string, string) {
	return "ip_" + c.ClientIP(), keyTypeIP
}

// userKey falls back to the client ip when no user was authenticated.
func userKey(c *gin.Context) (string, string) {
	if userID, exists := c.Get(UserIDKey); exists {
		return fmt.Sprintf("user_%v", userID), keyTypeUser
	}

	return clientIPKey(c)
}
