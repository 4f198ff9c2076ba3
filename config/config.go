// Package config loads scraper settings from .env, the environment, an
// optional YAML file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	SaveDirectory  string        `env:"SAVE_DIRECTORY" envDefault:"data"`
	LogDirectory   string        `env:"LOG_DIRECTORY" envDefault:"logs"`
	WebhookURL     string        `env:"WEBHOOK_URL"`
	FeedURL        string        `env:"FEED_URL" envDefault:"https://data.vatsim.net/v3/vatsim-data.json"`
	UpdateInterval time.Duration `env:"UPDATE_INTERVAL" envDefault:"300s"`
	APIAddr        string        `env:"API_ADDR" envDefault:":8080"`
	APIKey         string        `env:"API_KEY"`
	DBDriver       string        `env:"DB_DRIVER"`
	DBDSN          string        `env:"DB_DSN"`
	ConfigFile     string        `env:"SCRAPER_CONFIG"`
}

// fileConfig mirrors the keys accepted in the YAML config file.
type fileConfig struct {
	SaveDirectory  string `yaml:"save_directory"`
	LogDirectory   string `yaml:"log_directory"`
	WebhookURL     string `yaml:"webhook_url"`
	FeedURL        string `yaml:"feed_url"`
	UpdateInterval string `yaml:"update_interval"`
	APIAddr        string `yaml:"api_addr"`
	DBDriver       string `yaml:"db_driver"`
	DBDSN          string `yaml:"db_dsn"`
}

// Load builds the configuration. A missing .env file is not an error.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	configFile := cfg.ConfigFile
	for i, arg := range args {
		switch {
		case (arg == "-config" || arg == "--config") && i+1 < len(args):
			configFile = args[i+1]
		case strings.HasPrefix(arg, "-config="), strings.HasPrefix(arg, "--config="):
			configFile = arg[strings.Index(arg, "=")+1:]
		}
	}
	if configFile != "" {
		if err := cfg.applyFile(configFile); err != nil {
			return Config{}, err
		}
	}

	fs.StringVar(&cfg.ConfigFile, "config", configFile, "Path to a YAML config file")
	fs.StringVar(&cfg.SaveDirectory, "save-dir", cfg.SaveDirectory, "Directory for daily session archives")
	fs.StringVar(&cfg.LogDirectory, "log-dir", cfg.LogDirectory, "Directory for daily log files")
	fs.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "Discord webhook for failure notifications")
	fs.StringVar(&cfg.FeedURL, "feed-url", cfg.FeedURL, "VATSIM data feed URL")
	fs.DurationVar(&cfg.UpdateInterval, "interval", cfg.UpdateInterval, "Poll interval")
	fs.StringVar(&cfg.APIAddr, "api-addr", cfg.APIAddr, "Status API listen address, empty to disable")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "Optional SQL mirror driver (postgres or sqlite)")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "SQL mirror data source name")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.SaveDirectory, fc.SaveDirectory)
	setString(&c.LogDirectory, fc.LogDirectory)
	setString(&c.WebhookURL, fc.WebhookURL)
	setString(&c.FeedURL, fc.FeedURL)
	setString(&c.APIAddr, fc.APIAddr)
	setString(&c.DBDriver, fc.DBDriver)
	setString(&c.DBDSN, fc.DBDSN)
	if fc.UpdateInterval != "" {
		d, err := time.ParseDuration(fc.UpdateInterval)
		if err != nil {
			return fmt.Errorf("parse config file: update_interval: %w", err)
		}
		c.UpdateInterval = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.SaveDirectory == "" {
		return fmt.Errorf("SAVE_DIRECTORY must not be empty")
	}
	if c.LogDirectory == "" {
		return fmt.Errorf("LOG_DIRECTORY must not be empty")
	}
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL must be positive, got %v", c.UpdateInterval)
	}
	switch c.DBDriver {
	case "":
	case "postgres", "sqlite":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN must be set when DB_DRIVER is %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	return nil
}
