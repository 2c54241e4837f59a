// Package localdb opens the SQLite database backing the vault and keeps its
// schema current with the embedded goose migrations.
package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jobkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/jobkeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// ErrInitialization wraps every failure to open or migrate the database.
// The session cannot continue past it.
var ErrInitialization = errors.New("local database initialization failed")

const driverName = "sqlite"

// dsn appends connection pragmas understood by modernc.org/sqlite.
func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
}

// RunMigrations applies every pending migration.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// OpenRaw opens the database file without migrating it.
//
// The pool is limited to one connection: SQLite has a single writer, and
// one connection makes every statement queue instead of failing with
// SQLITE_BUSY.
func OpenRaw(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
		}
	}

	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	return db, nil
}

// InitDatabase opens the database at path and migrates it to the latest
// schema. Errors match ErrInitialization.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := OpenRaw(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	return db, nil
}
