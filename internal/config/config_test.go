package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func validEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://app@localhost/auction",
		"JWT_SECRET":   "jwt-secret",
		"SESSION_KEY":  "0123456789abcdef0123456789abcdef",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(validEnv()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.BasePath)
	assert.Equal(t, "Auction House", cfg.AppName)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 120*time.Minute, cfg.IdleLogoutWindow)
	assert.Equal(t, 4*time.Hour, cfg.SessionIdleTimeout)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, FlashStoreCookie, cfg.FlashStore)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	env := validEnv()
	env["BASE_PATH"] = "auction/"
	env["COOKIE_SECURE"] = "false"
	env["ALLOWED_ORIGINS"] = "https://a.example, https://b.example,"
	env["IDLE_LOGOUT_WINDOW"] = "30m"
	env["SESSION_IDLE_TIMEOUT"] = "1h"
	env["FLASH_STORE"] = "Postgres"
	env["LOGIN_RATE_PER_MINUTE"] = "3"

	cfg, err := FromEnv(envMap(env))
	require.NoError(t, err)
	assert.Equal(t, "/auction", cfg.BasePath)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.IdleLogoutWindow)
	assert.Equal(t, time.Hour, cfg.SessionIdleTimeout)
	assert.Equal(t, FlashStorePostgres, cfg.FlashStore)
	assert.Equal(t, 3, cfg.LoginRatePerMinute)
}

func TestFromEnv_SessionKeyOnlyForCookieStore(t *testing.T) {
	env := validEnv()
	delete(env, "SESSION_KEY")
	env["FLASH_STORE"] = "postgres"
	cfg, err := FromEnv(envMap(env))
	require.NoError(t, err)
	assert.Equal(t, FlashStorePostgres, cfg.FlashStore)
	assert.Empty(t, cfg.SessionKey)

	env["FLASH_STORE"] = "cookie"
	_, err = FromEnv(envMap(env))
	assert.ErrorContains(t, err, "SESSION_KEY must be at least 32 bytes")
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{"missing database", func(m map[string]string) { delete(m, "DATABASE_URL") }, "DATABASE_URL is required"},
		{"missing jwt", func(m map[string]string) { delete(m, "JWT_SECRET") }, "JWT_SECRET is required"},
		{"short key", func(m map[string]string) { m["SESSION_KEY"] = "short" }, "SESSION_KEY must be at least 32 bytes"},
		{"bad store", func(m map[string]string) { m["FLASH_STORE"] = "redis" }, "FLASH_STORE"},
		{"bad duration", func(m map[string]string) { m["TOKEN_TTL"] = "soon" }, "TOKEN_TTL: invalid duration"},
		{"negative duration", func(m map[string]string) { m["IDLE_LOGOUT_WINDOW"] = "-5m" }, "IDLE_LOGOUT_WINDOW: invalid duration"},
		{"bad bool", func(m map[string]string) { m["COOKIE_SECURE"] = "maybe" }, "COOKIE_SECURE"},
		{"bad rate", func(m map[string]string) { m["LOGIN_RATE_PER_MINUTE"] = "0" }, "LOGIN_RATE_PER_MINUTE"},
		{"backstop shorter than client window", func(m map[string]string) { m["SESSION_IDLE_TIMEOUT"] = "10m" }, "SESSION_IDLE_TIMEOUT must not be shorter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			tt.mutate(env)
			_, err := FromEnv(envMap(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"/":           "",
		"  ":          "",
		"auction":     "/auction",
		"/auction/":   "/auction",
		"//a/b//":     "/a/b",
		" /sale/2026": "/sale/2026",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBasePath(in), "input %q", in)
	}
}

func TestLoadNav_DefaultsWithoutFile(t *testing.T) {
	nav, err := LoadNav("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNav(), nav)
}

func TestLoadNav_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
admin:
  - label: Overview
    path: /admin
    key: dashboard
  - label: Reports
    path: /admin/reports
    key: reports
`), 0o600))

	nav, err := LoadNav(path)
	require.NoError(t, err)
	require.Len(t, nav.Admin, 2)
	assert.Equal(t, "Reports", nav.Admin[1].Label)
	assert.Equal(t, DefaultNav().Public, nav.Public)
	assert.Equal(t, DefaultNav().Auctioneer, nav.Auctioneer)
}

func TestLoadNav_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadNav(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("public: [label: x"), 0o600))
	_, err = LoadNav(bad)
	assert.Error(t, err)

	incomplete := filepath.Join(dir, "incomplete.yaml")
	require.NoError(t, os.WriteFile(incomplete, []byte("public:\n  - label: Home\n"), 0o600))
	_, err = LoadNav(incomplete)
	assert.ErrorContains(t, err, "needs label and path")
}
