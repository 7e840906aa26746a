// Package config loads the sunlight-proxy configuration from the environment.
//
// Variables use the SUNLIGHT_ prefix. A .env file is read first when present;
// ENV_PATH points at a different file. The API key falls back to the first
// line of SUNLIGHT_KEY_FILE, or ~/.sunlight.key when that is unset.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/logging"
)

// Prefix is the environment variable prefix.
const Prefix = "SUNLIGHT"

// KeyFileName is the API key file looked up in the home directory.
const KeyFileName = ".sunlight.key"

// ErrMissingAPIKey is returned when no API key is configured anywhere.
var ErrMissingAPIKey = errors.New("api key is required: set SUNLIGHT_API_KEY or write it to ~/" + KeyFileName)

// Config holds the application configuration.
type Config struct {
	APIKey  string `envconfig:"API_KEY"`
	KeyFile string `envconfig:"KEY_FILE"`

	UserAgent   string        `envconfig:"USER_AGENT"   default:"sunlight-go/0.1.0" validate:"required"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"               validate:"gt=0"`
	PageDelay   time.Duration `envconfig:"PAGE_DELAY"   default:"100ms"             validate:"gte=0"`

	LogLevel  string `envconfig:"LOG_LEVEL"  default:"info" validate:"oneof=debug info warn error"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	RedisAddr  string `envconfig:"REDIS_ADDR"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080" validate:"required"`

	CongressURL     string `envconfig:"CONGRESS_URL"      validate:"omitempty,url"`
	OpenStatesURL   string `envconfig:"OPENSTATES_URL"    validate:"omitempty,url"`
	CapitolWordsURL string `envconfig:"CAPITOLWORDS_URL"  validate:"omitempty,url"`
}

// Load reads the .env file, the environment and the key file, then validates the result.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.APIKey == "" {
		key, err := readKeyFile(cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints and the presence of an API key.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ClientConfig returns the HTTP client settings. Redis is left to the caller.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.APIKey)
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.HTTPTimeout
	return cfg
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}

// loadDotEnv loads ENV_PATH, or ./.env when it exists.
func loadDotEnv() error {
	path := os.Getenv("ENV_PATH")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Loaded environment file")
	return nil
}

// readKeyFile returns the first line of path, or of ~/.sunlight.key when
// path is empty. A missing default file yields an empty key.
func readKeyFile(path string) (string, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", nil
		}
		path = filepath.Join(home, KeyFileName)
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read key file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}
