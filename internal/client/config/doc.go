// Package config loads runtime configuration for the jobkeeper CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally read from a .env file in the
//     working directory. Real environment variables win over the file.
//  3. A JSON file selected with -c or -config.
//  4. Command-line flags.
//
// Environment
//
//	JOBKEEPER_DB           database file
//	JOBKEEPER_KDF          key derivation: pbkdf2 or argon2
//	JOBKEEPER_LOG_LEVEL    debug, info, warn, error
//	JOBKEEPER_LOG_FORMAT   text or json
//	JOBKEEPER_EXPORT_DIR   directory for backups
//	JOBKEEPER_AUTO_LOCK    idle time before the session locks ("15m", "0" disables)
//
// Flags
//
//	-d string   database file
//	-k string   key derivation for new passwords
//	-l string   log level
//	-e string   export directory
//
// # JSON schema
//
// auto_lock is a timex.Duration, so it may be a string like "15m" or integer
// nanoseconds:
//
//	{
//	  "database_path": "/home/me/.jobkeeper/jobkeeper.db",
//	  "kdf": "argon2",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "export_dir": "/home/me/backups",
//	  "auto_lock": "15m"
//	}
//
// The KDF setting only affects new passwords (setup and password change);
// an existing vault is always unlocked with the parameters stored in it.
package config
