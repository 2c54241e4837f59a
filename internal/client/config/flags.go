package config

import (
	"github.com/dmitrijs2005/jobkeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns (-d, -k, -l, -e); other
// arguments are left for other components.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-k", "-l", "-e"})

	fs := flagx.NewFlagSet("jobkeeper")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database file")
	fs.StringVar(&cfg.KDF, "k", cfg.KDF, "key derivation for new passwords (pbkdf2, argon2)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export directory")

	return fs.Parse(args)
}
