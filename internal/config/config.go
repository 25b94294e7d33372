package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Flash storage backends.
const (
	FlashStoreCookie   = "cookie"
	FlashStorePostgres = "postgres"
)

// MinSessionKeyLen is the shortest accepted flash cookie signing key.
const MinSessionKeyLen = 32

// Config is the server configuration, read from the environment.
type Config struct {
	Port           string
	BasePath       string
	AppName        string
	DatabaseURL    string
	JWTSecret      string
	SessionKey     string
	CookieSecure   bool
	AllowedOrigins []string

	// IdleLogoutWindow is the client-side auto-logout period.
	IdleLogoutWindow time.Duration
	// SessionIdleTimeout is the server backstop for sessions with no requests.
	SessionIdleTimeout time.Duration
	TokenTTL           time.Duration

	FlashStore         string
	NavFile            string
	LoginRatePerMinute int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	var errs []error
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	duration := func(key string, def time.Duration) time.Duration {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, raw))
			return def
		}
		return d
	}

	cfg := &Config{
		Port:               env("SERVER_PORT", "8080"),
		BasePath:           NormalizeBasePath(env("BASE_PATH", "")),
		AppName:            env("APP_NAME", "Auction House"),
		DatabaseURL:        env("DATABASE_URL", ""),
		JWTSecret:          env("JWT_SECRET", ""),
		SessionKey:         env("SESSION_KEY", ""),
		CookieSecure:       true,
		AllowedOrigins:     splitList(env("ALLOWED_ORIGINS", "")),
		IdleLogoutWindow:   duration("IDLE_LOGOUT_WINDOW", 120*time.Minute),
		SessionIdleTimeout: duration("SESSION_IDLE_TIMEOUT", 4*time.Hour),
		TokenTTL:           duration("TOKEN_TTL", 12*time.Hour),
		FlashStore:         strings.ToLower(env("FLASH_STORE", FlashStoreCookie)),
		NavFile:            env("NAV_FILE", ""),
		LoginRatePerMinute: 10,
	}

	if raw := env("COOKIE_SECURE", ""); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE: invalid bool %q", raw))
		} else {
			cfg.CookieSecure = b
		}
	}
	if raw := env("LOGIN_RATE_PER_MINUTE", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("LOGIN_RATE_PER_MINUTE: invalid value %q", raw))
		} else {
			cfg.LoginRatePerMinute = n
		}
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.FlashStore == FlashStoreCookie && len(c.SessionKey) < MinSessionKeyLen {
		errs = append(errs, fmt.Errorf("SESSION_KEY must be at least %d bytes", MinSessionKeyLen))
	}
	switch c.FlashStore {
	case FlashStoreCookie, FlashStorePostgres:
	default:
		errs = append(errs, fmt.Errorf("FLASH_STORE must be %q or %q, got %q", FlashStoreCookie, FlashStorePostgres, c.FlashStore))
	}
	if c.SessionIdleTimeout < c.IdleLogoutWindow {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must not be shorter than IDLE_LOGOUT_WINDOW"))
	}
	return errors.Join(errs...)
}

// NormalizeBasePath returns "" or a path starting with "/" and without a
// trailing slash.
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
