package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 365, cfg.Recurrence.MaxOccurrences)
	assert.Equal(t, "@daily", cfg.Recurrence.CacheResetCron)
	assert.Equal(t, 5*time.Minute, cfg.Availability.CacheTTL)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 2, cfg.Notifications.Workers)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("RECURRENCE_MAX_OCCURRENCES", 0)
	v.Set("AVAILABILITY_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	cfg := fromViper(v)

	assert.Equal(t, 365, cfg.Recurrence.MaxOccurrences)
	assert.Equal(t, 5*time.Minute, cfg.Availability.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
