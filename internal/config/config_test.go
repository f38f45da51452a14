package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/reqres-client/pkg/logging"
)

func parseMap(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	return Parse(env.Options{Environment: vars})
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parseMap(t, map[string]string{
		"REQRES_BASE_URL": "https://reqres.in/api/",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://reqres.in/api/", cfg.Reqres.BaseURL)
	assert.Equal(t, 300, cfg.Reqres.CacheTTLSeconds)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.Reqres.Timeout)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialBackoff)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parseMap(t, map[string]string{
		"REQRES_BASE_URL":              "http://localhost:9000/api/",
		"REQRES_API_KEY":               "reqres-free-v1",
		"REQRES_CACHE_TTL_SECONDS":     "60",
		"REQRES_HTTP_TIMEOUT":          "5s",
		"REQRES_RETRY_MAX_ATTEMPTS":    "2",
		"REQRES_RETRY_INITIAL_BACKOFF": "100ms",
		"CACHE_BACKEND":                "redis",
		"REDIS_ADDR":                   "redis:6379",
		"REDIS_DB":                     "3",
		"LOG_LEVEL":                    "debug",
		"LOG_PRETTY":                   "true",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Redis.DB)

	cc := cfg.ClientConfig()
	assert.Equal(t, "http://localhost:9000/api/", cc.BaseURL)
	assert.Equal(t, "reqres-free-v1", cc.APIKey)
	assert.Equal(t, 5*time.Second, cc.Timeout)
	assert.Equal(t, 2, cc.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cc.Retry.InitialBackoff)
	assert.Equal(t, 2.0, cc.Retry.BackoffMultiplier)

	lc := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.True(t, lc.Pretty)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{
			name:    "missing base url",
			vars:    map[string]string{},
			wantErr: "REQRES_BASE_URL",
		},
		{
			name:    "relative base url",
			vars:    map[string]string{"REQRES_BASE_URL": "reqres.in/api"},
			wantErr: "REQRES_BASE_URL must be an absolute URL",
		},
		{
			name:    "zero ttl",
			vars:    map[string]string{"REQRES_BASE_URL": "https://reqres.in/api/", "REQRES_CACHE_TTL_SECONDS": "0"},
			wantErr: "REQRES_CACHE_TTL_SECONDS must be positive",
		},
		{
			name:    "non numeric ttl",
			vars:    map[string]string{"REQRES_BASE_URL": "https://reqres.in/api/", "REQRES_CACHE_TTL_SECONDS": "five"},
			wantErr: "parse environment",
		},
		{
			name:    "unknown cache backend",
			vars:    map[string]string{"REQRES_BASE_URL": "https://reqres.in/api/", "CACHE_BACKEND": "memcached"},
			wantErr: "CACHE_BACKEND must be",
		},
		{
			name:    "zero attempts",
			vars:    map[string]string{"REQRES_BASE_URL": "https://reqres.in/api/", "REQRES_RETRY_MAX_ATTEMPTS": "0"},
			wantErr: "REQRES_RETRY_MAX_ATTEMPTS must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMap(t, tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("REQRES_BASE_URL", "https://reqres.in/api/")
	t.Setenv("REQRES_CACHE_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL())
}
