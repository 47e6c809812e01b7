// Package config loads server settings from the environment, an optional
// YAML file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// DSN builds a postgres:// URL accepted by both the pgx and lib/pq drivers.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig sets the per-IP fixed window. Requests of 0 disables the
// limiter.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type Config struct {
	Port            string          `mapstructure:"port"`
	Storage         string          `mapstructure:"storage"`
	DefaultTimezone string          `mapstructure:"default_timezone"`
	PublicFeedLimit int             `mapstructure:"public_feed_limit"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	SwaggerEnabled  bool            `mapstructure:"swagger_enabled"`
	DB              DatabaseConfig  `mapstructure:"db"`
	Redis           RedisConfig     `mapstructure:"redis"`
	JWT             JWTConfig       `mapstructure:"jwt"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("default_timezone", "UTC")
	v.SetDefault("public_feed_limit", 50)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("swagger_enabled", true)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "kanso_user")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "kanso_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 30*time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "kanso-habits")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)
}

// Load reads .env (if present) and then resolves every key. Environment
// variables use the upper-cased key with dots replaced by underscores, so
// db.host is DB_HOST and jwt.secret is JWT_SECRET. configFile may be empty.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.AllowedOrigins = splitList(strings.Join(cfg.AllowedOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("config: unknown storage %q (want %s or %s)", c.Storage, StoragePostgres, StorageMemory)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("config: invalid DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	if c.RateLimit.Requests < 0 {
		return errors.New("config: rate limit requests must not be negative")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Window <= 0 {
		return errors.New("config: rate limit window must be positive")
	}
	return nil
}

func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0
}

// Location is the evaluator zone used when a request names none.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
