// Package config loads server configuration from a TOML file, a .env
// file, and environment variable overrides, in that precedence order
// (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults mirror the public service deployment.
const (
	DefaultHTTPPort        = 8000
	DefaultPageSize        = 20
	MaxPageSize            = 100
	DefaultMinStock        = 50
	DefaultRateLimit       = 100 // requests per minute per IP
	DefaultCacheTTL        = 5 * time.Minute
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxConcurrent   = 4
	DefaultCatalogBatchMax = 1000
	DefaultCatalogPath     = "parts.db"
)

// Duration decodes TOML duration strings like "30s" or "5m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration tree.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Catalog CatalogConfig `toml:"catalog"`
	Mouser  MouserConfig  `toml:"mouser"`
	DigiKey DigiKeyConfig `toml:"digikey"`
}

// ServerConfig controls the HTTP transport and rate limiting.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	RatePerMinute  int      `toml:"rate_per_minute"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxConcurrent  int      `toml:"max_concurrent"`
}

// CacheConfig selects the response cache backend. Backend is one of
// "memory", "file", "redis", or "none".
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// CatalogConfig points at the local SQLite component catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// MouserConfig holds Mouser API credentials.
type MouserConfig struct {
	APIKey string `toml:"api_key"`
}

// DigiKeyConfig holds DigiKey OAuth client credentials.
type DigiKeyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           DefaultHTTPPort,
			RatePerMinute:  DefaultRateLimit,
			RequestTimeout: Duration(DefaultRequestTimeout),
			MaxConcurrent:  DefaultMaxConcurrent,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     Duration(DefaultCacheTTL),
		},
		Catalog: CatalogConfig{
			Path: DefaultCatalogPath,
		},
	}
}

// Load reads configuration from path (optional), a .env file in the
// working directory (optional), and environment variables. Environment
// variables take precedence over both files.
func Load(path string) (*Config, error) {
	// Credentials commonly live in .env during development. Missing
	// file is fine; a present-but-set variable is never overwritten.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PARTSTACK_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PARTSTACK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PARTSTACK_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.RatePerMinute = n
		}
	}
	if v := os.Getenv("PARTSTACK_DB"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("PARTSTACK_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("MOUSER_API_KEY"); v != "" {
		c.Mouser.APIKey = v
	}
	if v := os.Getenv("DIGIKEY_CLIENT_ID"); v != "" {
		c.DigiKey.ClientID = v
	}
	if v := os.Getenv("DIGIKEY_CLIENT_SECRET"); v != "" {
		c.DigiKey.ClientSecret = v
	}
}
