package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{
		DatabasePath: "jobkeeper.db",
		KDF:          "pbkdf2",
		LogLevel:     "info",
		LogFormat:    "text",
		ExportDir:    ".",
		AutoLock:     15 * time.Minute,
	}
	assert.Empty(t, cmp.Diff(want, c))

	p, err := c.KDFParams()
	require.NoError(t, err)
	assert.Equal(t, cryptox.PBKDF2Params(), p)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"JOBKEEPER_DB=from-dotenv.db\nJOBKEEPER_LOG_FORMAT=json\nJOBKEEPER_EXPORT_DIR=/dotenv/exports\n"), 0o600))

	jsonFile := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"database_path": "from-json.db",
		"log_level":     "warn",
		"auto_lock":     "5m",
	})

	env := envMap(map[string]string{
		"JOBKEEPER_DB":         "from-env.db",
		"JOBKEEPER_KDF":        "argon2",
		"JOBKEEPER_EXPORT_DIR": "/env/exports",
	})

	cfg, err := load([]string{"-c", jsonFile, "-l", "debug"}, envFile, env)
	require.NoError(t, err)

	// flag > json > env > .env > defaults
	want := &Config{
		DatabasePath: "from-json.db",
		KDF:          "argon2",
		LogLevel:     "debug",
		LogFormat:    "json",
		ExportDir:    "/env/exports",
		AutoLock:     5 * time.Minute,
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_FlagsOnly(t *testing.T) {
	cfg, err := load([]string{"-d", "/tmp/x.db", "-k", "argon2", "-e", "/tmp/out", "repl-arg"}, "", noEnv)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, "argon2", cfg.KDF)
	assert.Equal(t, "/tmp/out", cfg.ExportDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "unknown kdf", args: []string{"-k", "md5"}},
		{name: "bad auto lock env", env: map[string]string{EnvAutoLock: "soon"}},
		{name: "missing json file", args: []string{"-c", "/definitely/not/here.json"}},
		{name: "empty database", args: []string{"-d="}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.args, "", envMap(tt.env))
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingDotEnvIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvDatabase, "")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "jobkeeper.db", cfg.DatabasePath)
}
