package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
)

// Config holds runtime settings for the jobkeeper CLI.
type Config struct {
	DatabasePath string
	KDF          string
	LogLevel     string
	LogFormat    string
	ExportDir    string
	// AutoLock is the idle time after which the REPL forgets the key.
	// Zero disables it.
	AutoLock time.Duration
}

const defaultEnvFile = ".env"

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "jobkeeper.db"
	c.KDF = "pbkdf2"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ExportDir = "."
	c.AutoLock = 15 * time.Minute
}

// KDFParams resolves the configured algorithm name.
func (c *Config) KDFParams() (cryptox.KDFParams, error) {
	return cryptox.ParamsFor(c.KDF)
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return errors.New("database path is empty")
	}
	if _, err := c.KDFParams(); err != nil {
		return err
	}
	if c.AutoLock < 0 {
		return fmt.Errorf("auto lock must not be negative, got %s", c.AutoLock)
	}
	return nil
}

// LoadConfig builds a Config from defaults, environment, the JSON file and
// flags found in args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	return load(args, defaultEnvFile, os.LookupEnv)
}

func load(args []string, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, envFile, lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
