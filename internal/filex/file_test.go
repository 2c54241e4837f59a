package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirs(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b", "vault.db")

	require.NoError(t, EnsureParentDir(target))

	st, err := os.Stat(filepath.Join(base, "a", "b"))
	require.NoError(t, err)
	require.True(t, st.IsDir())
}

func TestEnsureParentDir_BareFileName(t *testing.T) {
	require.NoError(t, EnsureParentDir("vault.db"))
}

func TestWritePrivate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "exports", "backup.json")
	require.NoError(t, WritePrivate(target, []byte(`{}`)))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, `{}`, string(data))

	st, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}
