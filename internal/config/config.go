package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "HOBBYHUB"

// AuthConfig controls token signing for the backend.
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RateLimitConfig is the per-client budget applied to the auth routes.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ServerConfig is the configuration of the reference backend.
type ServerConfig struct {
	Addr         string
	DatabasePath string
	LogLevel     string
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	// SocialProviders maps a provider name to its userinfo endpoint.
	SocialProviders map[string]string
}

// ClientConfig is the configuration of the API client and the hobbyctl CLI.
type ClientConfig struct {
	BaseURL     string
	ProbeURL    string
	StoragePath string
	LogLevel    string
	Timeout     time.Duration
	CacheTTL    time.Duration
	MaxRetries  int
}

func newViper(configFile string, optional bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return v, nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if optional && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.Wrapf(err, "read config %s", configFile)
	}
	return v, nil
}

// LoadServer reads backend settings from defaults, the optional config file and HOBBYHUB_* env vars.
func LoadServer(configFile string) (*ServerConfig, error) {
	v, err := newViper(configFile, false)
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.addr", ":8008")
	v.SetDefault("database.path", "hobbyhub.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.jwt_secret", "development-insecure-secret-change-me")
	v.SetDefault("auth.issuer", "hobbyhub-api")
	v.SetDefault("auth.audience", "hobbyhub-clients")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_ttl", 30*24*time.Hour)
	v.SetDefault("ratelimit.rps", 10.0)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("social.providers", map[string]string{
		"google": "https://www.googleapis.com/oauth2/v3/userinfo",
		"github": "https://api.github.com/user",
	})

	cfg := &ServerConfig{
		Addr:         v.GetString("server.addr"),
		DatabasePath: v.GetString("database.path"),
		LogLevel:     v.GetString("log.level"),
		Auth: AuthConfig{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			Issuer:     v.GetString("auth.issuer"),
			Audience:   v.GetString("auth.audience"),
			AccessTTL:  v.GetDuration("auth.access_ttl"),
			RefreshTTL: v.GetDuration("auth.refresh_ttl"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("ratelimit.rps"),
			Burst: v.GetInt("ratelimit.burst"),
		},
		SocialProviders: v.GetStringMapString("social.providers"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *ServerConfig) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("auth token TTLs must be positive")
	}
	if c.Auth.RefreshTTL < c.Auth.AccessTTL {
		return errors.New("auth.refresh_ttl must not be shorter than auth.access_ttl")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("ratelimit.rps and ratelimit.burst must be positive")
	}
	return nil
}

// DefaultClientConfigFile is ~/.hobbyhub/config.yaml, or empty when the home dir is unknown.
func DefaultClientConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hobbyhub", "config.yaml")
}

// LoadClient reads client settings. A missing config file is not an error.
func LoadClient(configFile string) (*ClientConfig, error) {
	v, err := newViper(configFile, true)
	if err != nil {
		return nil, err
	}

	storagePath := "hobbyhub-storage.json"
	if home, err := os.UserHomeDir(); err == nil {
		storagePath = filepath.Join(home, ".hobbyhub", "storage.json")
	}

	v.SetDefault("api.base_url", "http://localhost:8008/api")
	v.SetDefault("api.probe_url", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.cache_ttl", 5*time.Minute)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("storage.path", storagePath)
	v.SetDefault("log.level", "warn")

	cfg := &ClientConfig{
		BaseURL:     strings.TrimRight(v.GetString("api.base_url"), "/"),
		ProbeURL:    v.GetString("api.probe_url"),
		StoragePath: v.GetString("storage.path"),
		LogLevel:    v.GetString("log.level"),
		Timeout:     v.GetDuration("api.timeout"),
		CacheTTL:    v.GetDuration("api.cache_ttl"),
		MaxRetries:  v.GetInt("api.max_retries"),
	}
	if cfg.ProbeURL == "" {
		probe, err := HealthURL(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		cfg.ProbeURL = probe
	}
	return cfg, nil
}

// HealthURL derives <scheme>://<host>/health from an API base URL.
func HealthURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrapf(err, "parse base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("base url %q must be absolute", baseURL)
	}
	return u.Scheme + "://" + u.Host + "/health", nil
}
