package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// migrateTo stops the schema at version, for legacy fixtures.
func migrateTo(ctx context.Context, db *sql.DB, version int64) error {
	p, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.UpTo(ctx, version); err != nil {
		return fmt.Errorf("goose up to %d: %w", version, err)
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	p, err := newProvider(db)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		require.NoError(t, rows.Scan(&c))
		cols = append(cols, c)
	}
	require.NoError(t, rows.Err())
	return cols
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "nested", "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "metadata"))
	require.True(t, tableExists(t, db, "records"))
	require.True(t, tableExists(t, db, "goose_db_version"))
	require.ElementsMatch(t,
		[]string{"collection", "id", "data", "kind", "nonce", "ciphertext", "updated_at"},
		columns(t, db, "records"))

	v, err := schemaVersion(ctx, db)
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := OpenRaw(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
}

func TestMigrateTo_LegacyRowsBecomePlain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := OpenRaw(ctx, path)
	require.NoError(t, err)
	require.NoError(t, migrateTo(ctx, db, 1))
	_, err = db.Exec(`INSERT INTO records(collection, id, data) VALUES ('applications', 'a1', '{"id":"a1"}')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var kind string
	require.NoError(t, db.QueryRow(`SELECT kind FROM records WHERE id='a1'`).Scan(&kind))
	require.Equal(t, "plain", kind)
}

func TestInitDatabase_FailureIsInitializationError(t *testing.T) {
	t.Parallel()

	// A directory where the database file should be cannot be opened.
	dir := filepath.Join(t.TempDir(), "db-as-dir")
	require.NoError(t, os.MkdirAll(dir, 0o700))

	_, err := InitDatabase(context.Background(), dir)
	require.ErrorIs(t, err, ErrInitialization)
}
