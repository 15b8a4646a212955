package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PLACE_SEARCH_URL", "https://geo.example.ch/geocode/")
	t.Setenv("INTERSECTION_URL", "https://geo.example.ch/layers")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://geo.example.ch/geocode", cfg.GetPlaceSearchURL())
	assert.Equal(t, "https://geo.example.ch/layers", cfg.GetIntersectionURL())
	assert.Equal(t, 10*time.Second, cfg.GetUpstreamTimeout())
	assert.Equal(t, 2, cfg.GetSearchPartitionLimit())
	assert.Equal(t, 3, cfg.GetQueryMinLength())
	assert.Equal(t, 300*time.Millisecond, cfg.GetQueryDebounce())
	assert.Equal(t, 200*time.Millisecond, cfg.GetBlurGrace())
	assert.Equal(t, 30*time.Minute, cfg.GetSessionIdleTTL())
	assert.Equal(t, 5000, cfg.GetSessionMax())
	assert.Equal(t, "CH", cfg.GetPhoneRegion())
	assert.Equal(t, "gsr:session:", cfg.GetRedisStateChannelPrefix())
	assert.False(t, cfg.IsRedisEnabled())
	assert.Equal(t, 40, cfg.GetRateLimitBurst())
}

func TestLoadRequiresUpstreamURLs(t *testing.T) {
	t.Setenv("PLACE_SEARCH_URL", "")
	t.Setenv("INTERSECTION_URL", "https://geo.example.ch/layers")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLACE_SEARCH_URL")
}

func TestLoadRejectsRelativeURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INTERSECTION_URL", "/layers")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTERSECTION_URL")
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUERY_DEBOUNCE", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadWildcardOriginEnablesAllowAll(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GetCORSAllowAll())
	assert.Equal(t, []string{"https://a.example", "*"}, cfg.GetCORSOrigins())
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOW_ALL", "true")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	_, err := Load()
	require.Error(t, err)
}

func TestRedisEnabledWhenURLSet(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsRedisEnabled())
}

func TestLoadRequiresCORSOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ORIGINS")
}
