package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	HTTPAddr        string        `yaml:"http-addr" env:"TTT_HTTP_ADDR" env-default:":8080"`
	LogLevel        string        `yaml:"log-level" env:"TTT_LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"TTT_SHUTDOWN_TIMEOUT" env-default:"5s"`
	Session         Session       `yaml:"session"`
	Redis           Redis         `yaml:"redis"`
	Archive         Archive       `yaml:"archive"`
	Telemetry       Telemetry     `yaml:"telemetry"`
}

type Session struct {
	// Store is either "memory" or "redis".
	Store     string        `yaml:"store" env:"TTT_SESSION_STORE" env-default:"memory"`
	TTL       time.Duration `yaml:"ttl" env:"TTT_SESSION_TTL" env-default:"2h"`
	JWTSecret string        `yaml:"jwt-secret" env:"TTT_JWT_SECRET"`
	// NextRoundStarter is "keep" or "player-one".
	NextRoundStarter string `yaml:"next-round-starter" env:"TTT_NEXT_ROUND_STARTER" env-default:"keep"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"TTT_REDIS_ADDR" env-default:"localhost:6379"`
}

type Archive struct {
	// SQLitePath enables the round archive when set.
	SQLitePath string `yaml:"sqlite-path" env:"TTT_ARCHIVE_SQLITE_PATH"`
}

type Telemetry struct {
	// OTLPEndpoint enables OpenTelemetry export when set, e.g. "otel-collector:4317".
	OTLPEndpoint   string `yaml:"otlp-endpoint" env:"TTT_OTLP_ENDPOINT"`
	ServiceName    string `yaml:"service-name" env:"TTT_SERVICE_NAME" env-default:"hotseat-tic-tac-toe"`
	ServiceVersion string `yaml:"service-version" env:"TTT_SERVICE_VERSION" env-default:"v0.1.0"`
}

var (
	ErrUnknownStore   = errors.New("unknown session store")
	ErrMissingSecret  = errors.New("jwt secret is required")
	ErrNonPositiveTTL = errors.New("session ttl must be positive")
)

// Load reads the YAML file at path when it exists and applies environment
// overrides on top. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return cfg, cfg.Validate()
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}
	return cfg, cfg.Validate()
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Session.Store)
	}
	if c.Session.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.Session.TTL <= 0 {
		return ErrNonPositiveTTL
	}
	return nil
}
