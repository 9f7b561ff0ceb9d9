package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// setRequiredEnv fills every variable Load treats as mandatory so the
// test process is not killed by must().
func setRequiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "turf",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "turf_booking",
		"JWT_SECRET":             "secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "10",
		"OMISE_PUBLIC_KEY":       "pkey_test",
		"OMISE_SECRET_KEY":       "skey_test",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaultsPendingWindowToFiveMinutes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PENDING_TTL_MIN", "")
	cfg := Load()
	// An unpaid booking holds its slots for five minutes before the
	// sweeper releases them.
	assert.Equal(t, 5, cfg.PendingTTLMin)
	assert.Equal(t, "thb", cfg.Currency)
}

func TestLoadHonorsPendingWindowOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PENDING_TTL_MIN", "30")
	t.Setenv("CURRENCY", "inr")
	cfg := Load()
	assert.Equal(t, 30, cfg.PendingTTLMin)
	assert.Equal(t, "inr", cfg.Currency)
}
