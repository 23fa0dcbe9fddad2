// Package config loads the CLI and dev server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Auth modes.
const (
	AuthSimulated = "simulated"
	AuthHTTP      = "http"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Backend string
	Path    string
	Prefix  string
	TTL     time.Duration
	Redis   RedisConfig
}

type AuthConfig struct {
	Mode    string
	BaseURL string
	Delay   time.Duration
	Timeout time.Duration
}

type SessionConfig struct {
	TokenKey      string
	UserKey       string
	RejectExpired bool
	Leeway        time.Duration
	LoginPath     string
	HomePath      string
}

type ThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

type ServerConfig struct {
	Addr         string
	JWTSecret    string
	AccessTTL    time.Duration
	DemoEmail    string
	DemoPassword string
	Throttle     ThrottleConfig
	Redis        RedisConfig
}

type AppConfig struct {
	Environment string
	Storage     StorageConfig
	Auth        AuthConfig
	Session     SessionConfig
	Server      ServerConfig
}

// Load reads path (or config.yaml from the usual locations when path is
// empty), then NUTRACALL_* environment variables. A missing default file is
// not an error.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "nutracall"))
		}
	}

	v.SetEnvPrefix("NUTRACALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.prefix", "nutracall")
	v.SetDefault("storage.ttl", "0s")
	v.SetDefault("storage.redis.addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)

	v.SetDefault("auth.mode", AuthSimulated)
	v.SetDefault("auth.baseurl", "http://127.0.0.1:8080")
	v.SetDefault("auth.delay", "1s")
	v.SetDefault("auth.timeout", "10s")

	defaults := goSession.DefaultConfig()
	v.SetDefault("session.tokenkey", defaults.Storage.TokenKey)
	v.SetDefault("session.userkey", defaults.Storage.UserKey)
	v.SetDefault("session.rejectexpired", defaults.Token.RejectExpired)
	v.SetDefault("session.leeway", defaults.Token.Leeway.String())
	v.SetDefault("session.loginpath", defaults.Routes.Login)
	v.SetDefault("session.homepath", defaults.Routes.Home)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.jwtsecret", "")
	v.SetDefault("server.accessttl", "1h")
	v.SetDefault("server.demoemail", "usuario@nutracall.com")
	v.SetDefault("server.demopassword", "")
	v.SetDefault("server.throttle.enabled", true)
	v.SetDefault("server.throttle.maxattempts", 5)
	v.SetDefault("server.throttle.window", "15m")
	v.SetDefault("server.redis.addr", "")
	v.SetDefault("server.redis.password", "")
	v.SetDefault("server.redis.db", 0)
}

func defaultStoragePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "nutracall", "session.json")
	}
	return ".nutracall-session.json"
}

// Validate checks the enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("storage.path is required for the file backend")
		}
	case BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.TTL < 0 {
		return errors.New("storage.ttl must be >= 0")
	}

	switch c.Auth.Mode {
	case AuthSimulated:
		if c.Auth.Delay < 0 {
			return errors.New("auth.delay must be >= 0")
		}
	case AuthHTTP:
		if c.Auth.BaseURL == "" {
			return errors.New("auth.baseurl is required in http mode")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}

	store := c.StoreConfig()
	return store.Validate()
}

// StoreConfig maps the session settings onto a store configuration.
func (c *AppConfig) StoreConfig() goSession.Config {
	cfg := goSession.DefaultConfig()
	cfg.Storage.TokenKey = c.Session.TokenKey
	cfg.Storage.UserKey = c.Session.UserKey
	cfg.Token.RejectExpired = c.Session.RejectExpired
	cfg.Token.Leeway = c.Session.Leeway
	cfg.Routes.Login = c.Session.LoginPath
	cfg.Routes.Home = c.Session.HomePath
	return cfg
}
