package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadCacheDefaults(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("CACHE_TTL_WALLET", "not-a-duration")
	t.Setenv("CACHE_TTL_CHORES", "250ms")

	cfg := Load()

	assert.True(t, cfg.Cache.Enabled, "unparseable bool falls back to enabled")
	assert.Equal(t, 30*time.Second, cfg.Cache.WalletTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Cache.ChoresTTL)
	assert.Equal(t, time.Second, cfg.Cache.RequestsTTL)
	assert.Equal(t, 10*time.Second, cfg.Cache.CardApplicationsTTL)
}

func TestLoadCacheDisabled(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")

	cfg := Load()

	assert.False(t, cfg.Cache.Enabled)
}

func TestParseStringSlice(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, parseStringSlice("http://a, http://b,"))
	assert.Equal(t, []string{}, parseStringSlice(""))
}
