package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("USER_REPOSITORY", "")
	t.Setenv("USER_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, "memory", cfg.UserRepository)
	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	assert.Equal(t, 256, cfg.EventBusBuffer)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 30, cfg.WriteLimitPerMinute)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("USER_REPOSITORY", "Postgres")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("EVENT_BUS_WORKERS", "not-a-number")
	t.Setenv("ELASTICSEARCH_ADDRS", " http://es1:9200 , ,http://es2:9200")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "users")

	cfg := Load()

	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	assert.Equal(t, 4, cfg.EventBusWorkers, "invalid values fall back to the default")
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ESAddrs())
	assert.Equal(t, "postgres://app:secret@db:5433/users?sslmode=disable", cfg.PostgresDSN())
}
