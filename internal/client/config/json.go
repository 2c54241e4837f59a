package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/jobkeeper/internal/flagx"
	"github.com/dmitrijs2005/jobkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Empty fields leave the current
// value untouched.
type JsonConfig struct {
	DatabasePath string          `json:"database_path"`
	KDF          string          `json:"kdf"`
	LogLevel     string          `json:"log_level"`
	LogFormat    string          `json:"log_format"`
	ExportDir    string          `json:"export_dir"`
	AutoLock     *timex.Duration `json:"auto_lock"`
}

// parseJson overlays cfg with the file named by -c/-config in args. No flag
// means no file.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.KDF, jc.KDF)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.ExportDir, jc.ExportDir)
	if jc.AutoLock != nil {
		cfg.AutoLock = jc.AutoLock.Duration
	}
	return nil
}
