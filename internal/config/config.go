package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/healthzones/internal/aggregation"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// PublicURL is where the browser reaches the service, used for OAuth redirects.
	PublicURL string `toml:"public_url"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// http
	CorsAllowedOrigins          []string `toml:"cors_allowed_origins"`
	SecureCookies               bool     `toml:"secure_cookies"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	SyncRateLimitAllowedPerMin  int      `toml:"sync_rate_limit_allowed_per_min"`
	SessionTTLHours             int      `toml:"session_ttl_hours"`

	// health api + sync
	HealthCacheTTLSec       int    `toml:"health_cache_ttl_sec"`
	HealthCacheSizeMB       int    `toml:"health_cache_size_mb"`
	SyncDailyAt             string `toml:"sync_daily_at"`
	SyncWeeks               int    `toml:"sync_weeks"`
	TokenRefreshIntervalMin int    `toml:"token_refresh_interval_min"`

	// providers
	OAuthUsePKCE bool `toml:"oauth_use_pkce"`
	// API base URLs, empty for the public provider APIs
	OuraBaseURL  string `toml:"oura_base_url"`
	WhoopBaseURL string `toml:"whoop_base_url"`

	Thresholds aggregation.Thresholds `toml:"thresholds"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) HealthCacheTTL() time.Duration {
	return time.Duration(c.HealthCacheTTLSec) * time.Second
}

func (c *Config) TokenRefreshInterval() time.Duration {
	return time.Duration(c.TokenRefreshIntervalMin) * time.Minute
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		env = "development"
	case "prod", "production":
		cfg = t.Production
		env = "production"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML file and returns the config for env. Keys missing from
// the file keep their default value.
func Load(env, path string) (*Config, error) {
	tomlCfg := &Toml{
		Development: Defaults(),
		Production:  Defaults(),
	}
	if _, err := toml.DecodeFile(path, tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Host:                        "localhost",
		Port:                        9000,
		PublicURL:                   "http://localhost:9000",
		LogLevel:                    "debug",
		LogToStdout:                 true,
		PostgresHost:                "localhost",
		PostgresPort:                "5432",
		PostgresDBName:              "healthzones",
		PostgresUser:                "postgres",
		RedisHost:                   "localhost",
		RedisPort:                   "6379",
		PrometheusMetricsHost:       "localhost",
		PrometheusMetricsPort:       "2112",
		LoginRateLimitAllowedPerMin: 15,
		SyncRateLimitAllowedPerMin:  2,
		SessionTTLHours:             24 * 7,
		HealthCacheTTLSec:           300,
		HealthCacheSizeMB:           8,
		SyncDailyAt:                 "06:00",
		SyncWeeks:                   12,
		TokenRefreshIntervalMin:     30,
		Thresholds:                  aggregation.DefaultThresholds(),
	}
}

// fillDefaults covers values explicitly zeroed in the file.
func (c *Config) fillDefaults() {
	d := Defaults()
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = d.LoginRateLimitAllowedPerMin
	}
	if c.SyncRateLimitAllowedPerMin <= 0 {
		c.SyncRateLimitAllowedPerMin = d.SyncRateLimitAllowedPerMin
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = d.SessionTTLHours
	}
	if c.HealthCacheSizeMB <= 0 {
		c.HealthCacheSizeMB = d.HealthCacheSizeMB
	}
	if c.SyncWeeks <= 0 {
		c.SyncWeeks = d.SyncWeeks
	}
	if c.TokenRefreshIntervalMin <= 0 {
		c.TokenRefreshIntervalMin = d.TokenRefreshIntervalMin
	}
	if c.SyncDailyAt == "" {
		c.SyncDailyAt = d.SyncDailyAt
	}
	if c.Thresholds.IsZero() {
		c.Thresholds = d.Thresholds
	}
	if c.Thresholds.ConversionFactor <= 0 {
		c.Thresholds.ConversionFactor = d.Thresholds.ConversionFactor
	}
}

func (c *Config) Validate() error {
	if _, err := time.Parse("15:04", c.SyncDailyAt); err != nil {
		return fmt.Errorf("invalid sync_daily_at %q: %w", c.SyncDailyAt, err)
	}
	if _, err := url.ParseRequestURI(c.PublicURL); err != nil {
		return fmt.Errorf("invalid public_url %q: %w", c.PublicURL, err)
	}
	t := c.Thresholds
	if !(t.MetJRisk > t.MetCritical && t.MetCritical > t.MetHighLoad && t.MetHighLoad > t.MetSlightlyHigh) {
		return fmt.Errorf("met thresholds must be strictly decreasing from j-risk to slightly-high")
	}
	if !(t.StrainJRisk > t.StrainCritical && t.StrainCritical > t.StrainHighLoad && t.StrainHighLoad > t.StrainSlightlyHigh) {
		return fmt.Errorf("strain thresholds must be strictly decreasing from j-risk to slightly-high")
	}
	return nil
}
