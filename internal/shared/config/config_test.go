package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOKING_HOLD_DURATION", "")
	t.Setenv("PAYMENT_CURRENCY", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.Booking.HoldDuration)
	assert.Equal(t, 15*time.Second, cfg.Booking.SweepInterval)
	assert.Equal(t, 100, cfg.Booking.BatchSize)
	assert.Equal(t, "cad", cfg.Payment.Currency)
	assert.Equal(t, 10*time.Second, cfg.Payment.GatewayTimeout)
	assert.Equal(t, 8*time.Hour, cfg.Jobs.ReminderInterval)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Contains(t, cfg.Database.DSN, "dbname=quicktix_db")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKING_HOLD_DURATION", "2m")
	t.Setenv("PAYMENT_CURRENCY", "USD")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("JWT_EXPIRES_IN", "60")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg := Load()

	assert.Equal(t, 2*time.Minute, cfg.Booking.HoldDuration)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.JWT.JWTExpiresIn)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.DSN)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("BOOKING_HOLD_DURATION", "soon")
	assert.Equal(t, 10*time.Minute, Load().Booking.HoldDuration)

	t.Setenv("BOOKING_HOLD_DURATION", "-5m")
	assert.Equal(t, 10*time.Minute, Load().Booking.HoldDuration)
}
