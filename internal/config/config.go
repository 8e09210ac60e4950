package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment variables use this prefix with dots replaced by underscores,
// e.g. PROXY_UPSTREAM_API_KEY overrides upstream.api_key.
const envPrefix = "PROXY"

const (
	DefaultUpstreamURL   = "https://shock.com/api/v1/get-referrals"
	DefaultAllowedOrigin = "https://yosoykush.fun"
	DefaultRoute         = "/api/proxy"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port  string `mapstructure:"port"`
	Route string `mapstructure:"route"`
}

type UpstreamConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 disables the client timeout
}

type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // console | json
}

// AuditConfig controls the optional invocation log. An empty DBPath disables it.
type AuditConfig struct {
	DBPath        string        `mapstructure:"db_path"`
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// AdminConfig guards the operational endpoints. An empty Token disables them.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// Enabled reports whether the audit trail has a backing database.
func (a AuditConfig) Enabled() bool { return a.DBPath != "" }

var (
	errMissingAPIKey = errors.New("missing upstream.api_key (set PROXY_UPSTREAM_API_KEY)")
	errMissingOrigin = errors.New("missing cors.allowed_origin")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.route", DefaultRoute)
	v.SetDefault("upstream.url", DefaultUpstreamURL)
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.timeout", 25*time.Second)
	v.SetDefault("cors.allowed_origin", DefaultAllowedOrigin)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("audit.db_path", "")
	v.SetDefault("audit.retention", 30*24*time.Hour)
	v.SetDefault("audit.prune_interval", time.Hour)
	v.SetDefault("admin.token", "")
}

// Load reads configs/config.yml (or config.yml from the given search paths)
// when present and applies PROXY_* environment overrides on top of defaults.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Upstream.URL = strings.TrimSpace(c.Upstream.URL)
	c.Upstream.APIKey = strings.TrimSpace(c.Upstream.APIKey)
	c.CORS.AllowedOrigin = strings.TrimSpace(c.CORS.AllowedOrigin)
	c.Admin.Token = strings.TrimSpace(c.Admin.Token)
	if c.Server.Route == "" {
		c.Server.Route = DefaultRoute
	}
	if !strings.HasPrefix(c.Server.Route, "/") {
		c.Server.Route = "/" + c.Server.Route
	}
	if c.Upstream.Timeout < 0 {
		c.Upstream.Timeout = 0
	}
}

// Validate checks the values the proxy cannot run without.
func (c Config) Validate() error {
	if c.Upstream.APIKey == "" {
		return errMissingAPIKey
	}
	u, err := url.Parse(c.Upstream.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.url must be an absolute URL; got %q", c.Upstream.URL)
	}
	if c.CORS.AllowedOrigin == "" {
		return errMissingOrigin
	}
	return nil
}

var (
	loaded  Config
	once    sync.Once
	loadErr error
)

// FromEnv loads configuration once per process and memoizes the result.
// Serverless entry points call it on every invocation.
func FromEnv() (Config, error) {
	once.Do(func() {
		loaded, loadErr = Load()
	})
	return loaded, loadErr
}
