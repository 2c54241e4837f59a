package records

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jobkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := localdb.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sealed(coll, id string) *models.Record {
	return &models.Record{
		Collection: coll,
		ID:         id,
		Kind:       models.RecordSealed,
		Nonce:      []byte("nonce-" + id),
		Ciphertext: []byte("ct-" + id),
		UpdatedAt:  time.UnixMilli(1_700_000_000_000).UTC(),
	}
}

func TestUpsert_InsertThenReplace(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sealed("applications", "a1")))

	got, err := r.Get(ctx, "applications", "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *sealed("applications", "a1"), *got)

	upd := sealed("applications", "a1")
	upd.Ciphertext = []byte("ct-new")
	require.NoError(t, r.Upsert(ctx, upd))

	got, err = r.Get(ctx, "applications", "a1")
	require.NoError(t, err)
	assert.Equal(t, []byte("ct-new"), got.Ciphertext)

	n, err := r.Count(ctx, "applications")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "applications", "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestList_FiltersByCollectionAndOrders(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sealed("applications", "b")))
	require.NoError(t, r.Upsert(ctx, sealed("applications", "a")))
	require.NoError(t, r.Upsert(ctx, sealed("resumes", "r1")))

	apps, err := r.List(ctx, "applications")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "a", apps[0].ID)
	assert.Equal(t, "b", apps[1].ID)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	colls, err := r.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"applications", "resumes"}, colls)
}

func TestList_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.List(context.Background(), "applications")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPlainRowRoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	rec := &models.Record{Collection: "resumes", ID: "r", Kind: models.RecordPlain, Data: []byte(`{"id":"r"}`)}
	require.NoError(t, r.Upsert(ctx, rec))

	got, err := r.Get(ctx, "resumes", "r")
	require.NoError(t, err)
	assert.Equal(t, models.RecordPlain, got.Kind)
	assert.Equal(t, []byte(`{"id":"r"}`), got.Data)
	assert.Nil(t, got.Nonce)
	assert.True(t, got.UpdatedAt.IsZero())
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sealed("applications", "a1")))
	require.NoError(t, r.Delete(ctx, "applications", "a1"))
	require.NoError(t, r.Delete(ctx, "applications", "a1"))

	n, err := r.Count(ctx, "applications")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClear_RemovesEverything(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sealed("applications", "a1")))
	require.NoError(t, r.Upsert(ctx, sealed("items", "skills")))
	require.NoError(t, r.Clear(ctx))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO records`).WillReturnError(boom)
	err = r.Upsert(ctx, sealed("applications", "a1"))
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "upsert record applications/a1")

	mock.ExpectQuery(`SELECT collection, id`).WillReturnError(boom)
	_, err = r.List(ctx, "applications")
	require.ErrorIs(t, err, boom)

	mock.ExpectExec(`DELETE FROM records WHERE`).WillReturnError(boom)
	require.ErrorContains(t, r.Delete(ctx, "applications", "a1"), "delete record")

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(boom)
	_, err = r.Count(ctx, "applications")
	require.ErrorContains(t, err, "count records")

	mock.ExpectExec(`DELETE FROM records`).WillReturnError(boom)
	require.ErrorContains(t, r.Clear(ctx), "clear records")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT collection, id`).
		WillReturnRows(sqlmock.NewRows([]string{"collection"}).AddRow("applications"))

	_, err = NewSQLiteRepository(db).ListAll(context.Background())
	require.ErrorContains(t, err, "scan all records")
	require.NoError(t, mock.ExpectationsWereMet())
}
