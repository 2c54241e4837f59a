package store

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/jobkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/jobkeeper/internal/client/session"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jobkeeper/internal/dbx"
)

// Rekey re-encrypts every stored record under newKey and records salt and
// p as the new derivation inputs, together with a fresh verifier.
//
// Records are enumerated from the database, not from any caller state, so
// nothing written earlier is left under the old key. Legacy plain records
// are sealed on the way. All writes happen in one transaction; on any
// failure it is rolled back, the session keeps the old key and the
// returned error wraps ErrRekeyFailed.
func (s *Store) Rekey(ctx context.Context, newKey cryptox.Key, salt []byte, p cryptox.KDFParams) error {
	if newKey.IsZero() {
		return fmt.Errorf("%w: empty key", ErrRekeyFailed)
	}

	var n int
	err := s.keys.Swap(func(old cryptox.Key) (cryptox.Key, error) {
		rows, err := s.records.ListAll(ctx)
		if err != nil {
			return cryptox.Key{}, err
		}

		resealed, err := s.reseal(ctx, rows, old, newKey)
		if err != nil {
			return cryptox.Key{}, err
		}

		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := records.NewSQLiteRepository(tx)
			for i := range resealed {
				if err := repo.Upsert(ctx, &resealed[i]); err != nil {
					return err
				}
			}
			return writeCredentials(ctx, metadata.NewSQLiteRepository(tx), salt, p, newKey)
		})
		if err != nil {
			return cryptox.Key{}, err
		}

		n = len(resealed)
		return newKey, nil
	})
	if err != nil {
		if errors.Is(err, session.ErrKeyNotSet) {
			return err
		}
		s.log.Error(ctx, "re-key aborted, previous key kept", "error", err)
		return fmt.Errorf("%w: %w", ErrRekeyFailed, err)
	}

	s.log.Info(ctx, "records re-encrypted", "count", n)
	return nil
}

// reseal opens every row with old and seals it with next, in parallel.
func (s *Store) reseal(ctx context.Context, rows []models.Record, old, next cryptox.Key) ([]models.Record, error) {
	out := make([]models.Record, len(rows))
	now := s.now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := fromRow(row)
			if err != nil {
				return err
			}
			data, err := plaintext(rec, old, true)
			if err != nil {
				return fmt.Errorf("%s: %w", row.Collection, err)
			}
			env, err := cryptox.SealBytes(data, next)
			if err != nil {
				return err
			}
			out[i] = sealedRow(row.Collection, row.ID, env, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
