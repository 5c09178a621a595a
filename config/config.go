// Package config loads service settings from an optional file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseName string

	RedisAddr       string
	RedisDB         int
	CacheTTLSeconds int

	ESAddr  string
	ESIndex string

	LogLevel  string
	LogFormat string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", 8000)
	v.SetDefault("database_url", "")
	v.SetDefault("database_name", "lumina")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl_seconds", 30)
	v.SetDefault("es_addr", "")
	v.SetDefault("es_index", "communityposts")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// New returns a viper instance reading from fs with defaults and environment
// binding applied. Callers may bind flags onto it before calling Load.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	defaults(v)
	v.AutomaticEnv()
	return v
}

// Load reads path (if non-empty) and resolves the final configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:            v.GetInt("port"),
		DatabaseURL:     v.GetString("database_url"),
		DatabaseName:    v.GetString("database_name"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisDB:         v.GetInt("redis_db"),
		CacheTTLSeconds: v.GetInt("cache_ttl_seconds"),
		ESAddr:          v.GetString("es_addr"),
		ESIndex:         v.GetString("es_index"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache_ttl_seconds must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
