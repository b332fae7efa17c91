package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8081", cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.RequestTimeout)
	assert.Equal(t, "stasher_session", cfg.Session.CookieName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_REQUEST_TIMEOUT", "15s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("API_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestApplyEnv_EnvWinsOverFile(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.internal")

	cfg := &Config{
		Server: ServerConfig{Port: 7000},
		API:    APIConfig{BaseURL: "http://from-file", RequestTimeout: 5 * time.Second},
	}
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "http://api.internal", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, "stasher_session", cfg.Session.CookieName)
}

func TestSessionConfig_TimeLocation(t *testing.T) {
	loc, err := SessionConfig{Location: "UTC"}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = SessionConfig{}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = SessionConfig{Location: "Mars/Olympus"}.TimeLocation()
	assert.Error(t, err)
}

func TestLoad_SessionLimits(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 10000, cfg.Session.MaxSessions)

	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("SESSION_MAX", "20")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 20, cfg.Session.MaxSessions)

	t.Setenv("SESSION_IDLE_TIMEOUT", "later")
	_, err = Load()
	assert.Error(t, err)
}
