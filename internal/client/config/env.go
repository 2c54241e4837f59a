package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDatabase  = "JOBKEEPER_DB"
	EnvKDF       = "JOBKEEPER_KDF"
	EnvLogLevel  = "JOBKEEPER_LOG_LEVEL"
	EnvLogFormat = "JOBKEEPER_LOG_FORMAT"
	EnvExportDir = "JOBKEEPER_EXPORT_DIR"
	EnvAutoLock  = "JOBKEEPER_AUTO_LOCK"
)

// parseEnv overlays cfg with JOBKEEPER_* variables. Values from lookup
// (the process environment) take precedence over envFile, which may be
// absent.
func parseEnv(cfg *Config, envFile string, lookup func(string) (string, bool)) error {
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVals = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok && v != ""
	}

	for key, dst := range map[string]*string{
		EnvDatabase:  &cfg.DatabasePath,
		EnvKDF:       &cfg.KDF,
		EnvLogLevel:  &cfg.LogLevel,
		EnvLogFormat: &cfg.LogFormat,
		EnvExportDir: &cfg.ExportDir,
	} {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get(EnvAutoLock); ok {
		d, err := parseAutoLock(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAutoLock, err)
		}
		cfg.AutoLock = d
	}
	return nil
}

// parseAutoLock accepts a Go duration; a bare "0" disables locking.
func parseAutoLock(v string) (time.Duration, error) {
	if v == "0" {
		return 0, nil
	}
	return time.ParseDuration(v)
}
