package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT collection, id, kind, data, nonce, ciphertext, updated_at FROM records`

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (models.Record, error) {
	var (
		rec  models.Record
		kind string
		ms   int64
	)
	if err := s.Scan(&rec.Collection, &rec.ID, &kind, &rec.Data, &rec.Nonce, &rec.Ciphertext, &ms); err != nil {
		return models.Record{}, err
	}
	rec.Kind = models.RecordKind(kind)
	rec.UpdatedAt = fromMillis(ms)
	return rec, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.Record) error {
	query := `
		INSERT INTO records (collection, id, kind, data, nonce, ciphertext, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			kind = excluded.kind,
			data = excluded.data,
			nonce = excluded.nonce,
			ciphertext = excluded.ciphertext,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.Collection, rec.ID, string(rec.Kind), rec.Data, rec.Nonce, rec.Ciphertext, toMillis(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert record %s/%s: %w", rec.Collection, rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, collection, id string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE collection = ? AND id = ?`, collection, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s/%s: %w", collection, id, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) query(ctx context.Context, what, query string, args ...any) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", what, err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return result, nil
}

func (r *SQLiteRepository) List(ctx context.Context, collection string) ([]models.Record, error) {
	return r.query(ctx, "records of "+collection,
		selectColumns+` WHERE collection = ? ORDER BY id`, collection)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Record, error) {
	return r.query(ctx, "all records", selectColumns+` ORDER BY collection, id`)
}

func (r *SQLiteRepository) Delete(ctx context.Context, collection, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete record %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records of %s: %w", collection, err)
	}
	return n, nil
}

func (r *SQLiteRepository) Collections(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT collection FROM records ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("select collections: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}
