package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string `env:"HALLMARK_PORT" envDefault:"8080"`
	DBPath       string `env:"HALLMARK_DB_PATH"`
	StaticPath   string `env:"HALLMARK_STATIC_PATH" envDefault:"static"`
	ArchivePath  string `env:"HALLMARK_ARCHIVE_PATH"` // empty disables the archive
	Timezone     string `env:"HALLMARK_TIMEZONE" envDefault:"Europe/London"`
	LogMode      string `env:"HALLMARK_LOG_MODE" envDefault:"development"`
	Seed         int64  `env:"HALLMARK_SEED" envDefault:"0"` // 0 seeds from crypto/rand
	RateLimit    int    `env:"HALLMARK_RATE_LIMIT" envDefault:"60"`
	FeaturedHour int    `env:"HALLMARK_FEATURED_HOUR" envDefault:"6"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("HALLMARK_DB_PATH is required")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("HALLMARK_RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if c.FeaturedHour < 0 || c.FeaturedHour > 23 {
		return fmt.Errorf("HALLMARK_FEATURED_HOUR must be between 0 and 23, got %d", c.FeaturedHour)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("HALLMARK_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
