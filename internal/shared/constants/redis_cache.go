package constants

import "time"

// Redis key layout: quicktix:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "quicktix"
)

// ================== SHOWS MODULE ==================

const (
	CACHE_KEY_OCCUPIED_SEATS = CACHE_PREFIX + ":shows:occupied:uuid:" // + show-id
)

const (
	TTL_OCCUPIED_SEATS = 30 * time.Second
)

// ================== PAYMENTS MODULE ==================

const (
	CACHE_KEY_WEBHOOK_EVENT = CACHE_PREFIX + ":payments:webhook:event:" // + provider event id
)

const (
	TTL_WEBHOOK_EVENT = 24 * time.Hour
)

// ================== ADMIN MODULE ==================

const (
	CACHE_KEY_ADMIN_DASHBOARD = CACHE_PREFIX + ":admin:dashboard"
)

const (
	TTL_ADMIN_DASHBOARD = 1 * time.Minute
)

// ================== RATE LIMIT ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + type:client
)

func BuildOccupiedSeatsKey(showID string) string {
	return CACHE_KEY_OCCUPIED_SEATS + showID
}

func BuildWebhookEventKey(eventID string) string {
	return CACHE_KEY_WEBHOOK_EVENT + eventID
}
