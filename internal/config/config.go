package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env-default:"local"`
	Postgres   Postgres   `yaml:"postgres"`
	Server     Server     `yaml:"server"`
	Feed       Feed       `yaml:"feed"`
	Aggregator Aggregator `yaml:"aggregator"`
	Visibility Visibility `yaml:"visibility"`
	Store      Store      `yaml:"store"`
}

type Postgres struct {
	Username        string        `env:"POSTGRES_USER" env-required:"true"`
	Password        string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-required:"true"`
	Port            string        `env:"POSTGRES_PORT" env-required:"true"`
	Database        string        `env:"POSTGRES_DB" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env-default:"1m"`
}

type Server struct {
	Host    string        `yaml:"host" env-default:"localhost"`
	Port    string        `yaml:"port" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// Feed configures the postgres change listener behind live streams.
type Feed struct {
	Channel      string        `yaml:"channel" env-default:"turnaround_changes"`
	MinReconnect time.Duration `yaml:"min_reconnect" env-default:"10s"`
	MaxReconnect time.Duration `yaml:"max_reconnect" env-default:"1m"`
	Buffer       int           `yaml:"buffer" env-default:"64"`
}

type Aggregator struct {
	Enabled bool `yaml:"enabled" env:"AGGREGATOR_ENABLED" env-default:"true"`
}

// Visibility.Match is "uid" or "triple".
type Visibility struct {
	Match string `yaml:"match" env-default:"uid"`
}

// Store.CompareAndSet makes task writes conditional on the revision read.
type Store struct {
	CompareAndSet bool `yaml:"compare_and_set" env-default:"false"`
}

func (c *Config) validate() error {
	switch c.Visibility.Match {
	case "uid", "triple":
	default:
		return fmt.Errorf("unknown visibility.match %q", c.Visibility.Match)
	}

	if c.Feed.MinReconnect <= 0 || c.Feed.MaxReconnect < c.Feed.MinReconnect {
		return errors.New("feed reconnect intervals must be positive and min <= max")
	}

	return nil
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	return LoadPath(configPath)
}

func LoadPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}
