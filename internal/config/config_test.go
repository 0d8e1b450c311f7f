package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DASHBOARD_THEME", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yml")
	content := `
dashboard:
  port: 3100
  theme:
    mode: dark
    accent_palette: teal
backend:
  base_url: http://analytics.internal:9000/
  timeout: 3s
api:
  port: 9000
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3100, cfg.Dashboard.Port)
	require.Equal(t, "dark", cfg.Dashboard.Theme.Mode)
	require.Equal(t, "teal", cfg.Dashboard.Theme.AccentPalette)
	require.Equal(t, "http://analytics.internal:9000", cfg.Backend.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	require.Equal(t, ":9000", cfg.APIAddr())
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestSetDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("DASHBOARD_THEME", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: {}"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultBackendURL, cfg.Backend.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	require.Equal(t, ":3000", cfg.DashboardAddr())
	require.Equal(t, "system", cfg.Dashboard.Theme.Mode)
	require.Equal(t, 20, cfg.API.RecentRuns)
	require.Equal(t, "edyou.runs.>", cfg.NATS.Subject)
	require.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Default()
	require.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	require.Equal(t, "s3cret", cfg.JWT.Secret)
	require.Equal(t, "s3cret", cfg.Backend.ServiceSecret, "service secret falls back to the jwt secret")
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsUnknownTheme(t *testing.T) {
	t.Setenv("DASHBOARD_THEME", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard:\n  theme:\n    mode: sepia\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotEmpty(t, cfg.Backend.BaseURL)
}
