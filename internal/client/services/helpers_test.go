package services

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jobkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/jobkeeper/internal/client/session"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
)

// fastKDF keeps tests quick; production uses cryptox.PBKDF2Params.
var fastKDF = cryptox.KDFParams{Algo: cryptox.AlgoPBKDF2, Iterations: 1000}

func newTestStore(t *testing.T) (*store.Store, *sql.DB) {
	t.Helper()
	db, err := localdb.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "jobkeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return store.New(db, session.NewKeyRing(), logging.Nop()), db
}

// unlockedStore returns a store whose key ring already holds a key.
func unlockedStore(t *testing.T) *store.Store {
	t.Helper()
	st, _ := newTestStore(t)
	k, err := cryptox.NewKey(bytes.Repeat([]byte{0x42}, cryptox.KeySize))
	require.NoError(t, err)
	st.Keys().Set(k)
	return st
}
