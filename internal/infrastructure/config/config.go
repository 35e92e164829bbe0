package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level" validate:"oneof=debug info warn error"`

	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
	Sweep    Sweep    `koanf:"sweep"`
	Metrics  Metrics  `koanf:"metrics"`
}

type Database struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxConns        int           `koanf:"max_conns" validate:"min=1"`
	MinConns        int           `koanf:"min_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type Redis struct {
	URL     string `koanf:"url" validate:"required"`
	Channel string `koanf:"channel" validate:"required"`
}

type Sweep struct {
	Interval time.Duration `koanf:"interval" validate:"min=1s"`
}

type Metrics struct {
	Port int `koanf:"port" validate:"min=1,max=65535"`
}

// Load layers defaults, an optional YAML file, and DMX_-prefixed environment
// variables, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Database: Database{
			URL:             "postgres://localhost:5432/device_auction",
			MaxConns:        25,
			MinConns:        5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: Redis{
			URL:     "redis://localhost:6379/0",
			Channel: "auction.transitions",
		},
		Sweep: Sweep{
			Interval: time.Minute,
		},
		Metrics: Metrics{
			Port: 9091,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("DMX_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "DMX_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
