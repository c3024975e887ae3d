package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Query     QueryConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins []string
}

type DatabaseConfig struct {
	// Driver is "mongo" or "memory".
	Driver          string
	URL             string
	Name            string
	Timeout         time.Duration
	ConnectAttempts int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type QueryConfig struct {
	DefaultLimit int64
	// MaxLimit of 0 leaves caller-supplied limits unbounded.
	MaxLimit int64
	// ErrorDetailMax bounds the error text in 500 responses.
	ErrorDetailMax int
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_TIMEOUT", 10)
	v.SetDefault("DATABASE_CONNECT_ATTEMPTS", 5)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("QUERY_DEFAULT_LIMIT", 50)
	v.SetDefault("QUERY_MAX_LIMIT", 500)
	v.SetDefault("ERROR_DETAIL_MAX", 200)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			Environment:  v.GetString("ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			AllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("STORE_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			Name:            v.GetString("DATABASE_NAME"),
			Timeout:         time.Duration(v.GetInt("DATABASE_TIMEOUT")) * time.Second,
			ConnectAttempts: v.GetInt("DATABASE_CONNECT_ATTEMPTS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Query: QueryConfig{
			DefaultLimit:   v.GetInt64("QUERY_DEFAULT_LIMIT"),
			MaxLimit:       v.GetInt64("QUERY_MAX_LIMIT"),
			ErrorDetailMax: v.GetInt("ERROR_DETAIL_MAX"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", c.Database.Driver)
	}
	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("DATABASE_CONNECT_ATTEMPTS must be at least 1")
	}
	if c.Query.DefaultLimit < 1 {
		return fmt.Errorf("QUERY_DEFAULT_LIMIT must be positive, got %d", c.Query.DefaultLimit)
	}
	if c.Query.MaxLimit < 0 {
		return fmt.Errorf("QUERY_MAX_LIMIT must not be negative, got %d", c.Query.MaxLimit)
	}
	if c.Query.MaxLimit > 0 && c.Query.MaxLimit < c.Query.DefaultLimit {
		return fmt.Errorf("QUERY_MAX_LIMIT (%d) is below QUERY_DEFAULT_LIMIT (%d)", c.Query.MaxLimit, c.Query.DefaultLimit)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
