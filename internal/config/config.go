package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	HTTPPort        string        `yaml:"http_port"`
	Backend         string        `yaml:"backend"`
	StorageKey      string        `yaml:"storage_key"`
	PagePath        string        `yaml:"page_path"`
	SessionCookie   string        `yaml:"session_cookie"`
	LogLevel        string        `yaml:"log_level"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Redis           RedisConfig   `yaml:"redis"`
	Mongo           MongoConfig   `yaml:"mongo"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type MongoConfig struct {
	URI         string        `yaml:"uri"`
	Database    string        `yaml:"database"`
	Collection  string        `yaml:"collection"`
	ExpireAfter time.Duration `yaml:"expire_after"`
}

type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		HTTPPort:        "8080",
		Backend:         BackendRedis,
		StorageKey:      "nh_cart",
		SessionCookie:   "nh_session",
		LogLevel:        "info",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "cartdb",
			Collection: "carts",
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		},
	}
}

// Load layers defaults, the optional YAML file at path, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config failed: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.Backend = getEnv("CART_BACKEND", c.Backend)
	c.StorageKey = getEnv("CART_STORAGE_KEY", c.StorageKey)
	c.PagePath = getEnv("CART_PAGE_PATH", c.PagePath)
	c.SessionCookie = getEnv("CART_SESSION_COOKIE", c.SessionCookie)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DB_NAME", c.Mongo.Database)
	c.Mongo.Collection = getEnv("MONGO_COLLECTION", c.Mongo.Collection)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("REDIS_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_TTL %q: %w", v, err)
		}
		c.Redis.TTL = ttl
	}
	if v := os.Getenv("BREAKER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_ENABLED %q: %w", v, err)
		}
		c.Breaker.Enabled = enabled
	}
	return nil
}

var ErrUnknownBackend = errors.New("unknown storage backend")

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.StorageKey == "" {
		return errors.New("storage key must not be empty")
	}
	if c.SessionCookie == "" {
		return errors.New("session cookie name must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
