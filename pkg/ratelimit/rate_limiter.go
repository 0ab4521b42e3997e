package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault         RateLimitType = "default"
	RateLimitTypePublic          RateLimitType = "public"
	RateLimitTypeAuth            RateLimitType = "auth"
	RateLimitTypeBooking         RateLimitType = "booking"
	RateLimitTypeBookingCritical RateLimitType = "booking_critical"
	RateLimitTypeAdmin           RateLimitType = "admin"
	RateLimitTypeWebhook         RateLimitType = "webhook"
	RateLimitTypeUser            RateLimitType = "user"
	RateLimitTypeHealth          RateLimitType = "health"
)

// Config carries one request budget per route class.
type Config struct {
	Enabled                 bool          `json:"enabled"`
	WindowDuration          time.Duration `json:"window_duration"`
	DefaultRequests         int           `json:"default_requests"`
	PublicRequests          int           `json:"public_requests"`
	AuthRequests            int           `json:"auth_requests"`
	BookingRequests         int           `json:"booking_requests"`
	BookingCriticalRequests int           `json:"booking_critical_requests"`
	AdminRequests           int           `json:"admin_requests"`
	WebhookRequests         int           `json:"webhook_requests"`
	UserRequests            int           `json:"user_requests"`
	HealthRequests          int           `json:"health_requests"`
	WhitelistedIPs          []string      `json:"whitelisted_ips"`
}

// FromConfig derives the per-class budgets from the application settings.
// Reservations get half the booking budget, health probes and user routes
// reuse the public and default budgets.
func FromConfig(cfg config.RateLimitConfig) *Config {
	critical := cfg.BookingRequests / 2
	if critical < 1 {
		critical = 1
	}
	return &Config{
		Enabled:                 cfg.Enabled,
		WindowDuration:          cfg.WindowDuration,
		DefaultRequests:         cfg.DefaultRequests,
		PublicRequests:          cfg.PublicRequests,
		AuthRequests:            cfg.AuthRequests,
		BookingRequests:         cfg.BookingRequests,
		BookingCriticalRequests: critical,
		AdminRequests:           cfg.AdminRequests,
		WebhookRequests:         cfg.WebhookRequests,
		UserRequests:            cfg.DefaultRequests,
		HealthRequests:          cfg.PublicRequests,
		WhitelistedIPs:          cfg.WhitelistedIPs,
	}
}

// Result is the outcome of one check. ResetTime is when the oldest counted
// request leaves the window.
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// slidingWindow keeps one sorted-set member per admitted request, scored in
// milliseconds. Replies {allowed, count, oldest score}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then
	first = tonumber(oldest[2])
end
return {allowed, count, first}
`)

// RateLimiter counts requests per client and route class in Redis.
type RateLimiter struct {
	client    *redis.Client
	config    *Config
	whitelist map[string]struct{}
	seq       atomic.Uint64
	now       func() time.Time
}

func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	whitelist := make(map[string]struct{}, len(config.WhitelistedIPs))
	for _, ip := range config.WhitelistedIPs {
		whitelist[ip] = struct{}{}
	}
	return &RateLimiter{
		client:    client,
		config:    config,
		whitelist: whitelist,
		now:       time.Now,
	}
}

// IsAllowed admits or rejects one request. Disabled limiting and whitelisted
// clients never touch Redis.
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	now := r.now()

	if _, ok := r.whitelist[clientIP]; !r.config.Enabled || ok {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: now.Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := fmt.Sprintf("%s%s:%s", constants.CACHE_KEY_RATE_LIMIT, limitType, clientIP)
	reply, err := slidingWindow.Run(ctx, r.client, []string{key},
		now.UnixMilli(),
		r.config.WindowDuration.Milliseconds(),
		limit,
		r.member(now),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script failed: %w", err)
	}
	return windowResult(reply, limit, r.config.WindowDuration)
}

// member is unique per request so bursts within one millisecond all count.
func (r *RateLimiter) member(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 36) + "-" + strconv.FormatUint(r.seq.Add(1), 36)
}

func windowResult(reply []int64, limit int, window time.Duration) (*Result, error) {
	if len(reply) != 3 {
		return nil, fmt.Errorf("unexpected rate limit reply %v", reply)
	}
	remaining := limit - int(reply[1])
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   reply[0] == 1,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: time.UnixMilli(reply[2]).Add(window).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeAuth:
		return r.config.AuthRequests
	case RateLimitTypeBooking:
		return r.config.BookingRequests
	case RateLimitTypeBookingCritical:
		return r.config.BookingCriticalRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeWebhook:
		return r.config.WebhookRequests
	case RateLimitTypeUser:
		return r.config.UserRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}
