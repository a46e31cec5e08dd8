package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "")
	t.Setenv("APP_KEY_PREFIX", "")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "bus2college", cfg.AppKeyPrefix)
	assert.False(t, cfg.RequireEmailConfirmation)
	assert.Equal(t, 180, cfg.ActivityRetentionDays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ACTIVITY_RETENTION_DAYS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.True(t, cfg.RequireEmailConfirmation)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 180, cfg.ActivityRetentionDays)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
