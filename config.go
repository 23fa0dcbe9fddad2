package goSession

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/navigation"
)

// Config controls a [Store]. Obtain defaults from [DefaultConfig].
type Config struct {
	Storage StorageConfig
	Token   TokenConfig
	Routes  RoutesConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the durable storage keys.
type StorageConfig struct {
	TokenKey string
	UserKey  string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls token inspection during initialization. Opaque tokens
// are never inspected; JWTs with an exp claim in the past (beyond Leeway) are
// discarded when RejectExpired is set.
type TokenConfig struct {
	RejectExpired bool
	Leeway        time.Duration
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names the login view and the default view.
type RoutesConfig struct {
	Login string
	Home  string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration matching the dashboard's storage
// layout ("auth_token" and "user" keys).
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			TokenKey: "auth_token",
			UserKey:  "user",
		},
		Token: TokenConfig{
			RejectExpired: true,
			Leeway:        30 * time.Second,
		},
		Routes: RoutesConfig{
			Login: "/login",
			Home:  "/",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.TokenKey) == "" {
		return errors.New("Storage.TokenKey must be set")
	}
	if strings.TrimSpace(c.Storage.UserKey) == "" {
		return errors.New("Storage.UserKey must be set")
	}
	if c.Storage.TokenKey == c.Storage.UserKey {
		return errors.New("Storage.TokenKey and Storage.UserKey must differ")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 10*time.Minute {
		return errors.New("Token.Leeway must be between 0 and 10m")
	}
	if !navigation.IsLocalPath(c.Routes.Login) {
		return errors.New("Routes.Login must be a local absolute path")
	}
	if !navigation.IsLocalPath(c.Routes.Home) {
		return errors.New("Routes.Home must be a local absolute path")
	}
	if c.Routes.Login == c.Routes.Home {
		return errors.New("Routes.Login and Routes.Home must differ")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}
	return nil
}
