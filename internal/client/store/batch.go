package store

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jobkeeper/internal/dbx"
)

// Item is one entity of a batch write.
type Item struct {
	Collection string
	Entity     Entity
}

// ImportBatch seals every item under the current key and writes them all
// in a single transaction. Either every item is stored or none is.
func (s *Store) ImportBatch(ctx context.Context, batch []Item) error {
	if len(batch) == 0 {
		return nil
	}

	payloads := make([][]byte, len(batch))
	for i, it := range batch {
		if err := checkCollection(it.Collection); err != nil {
			return err
		}
		if it.Entity.RecordID() == "" {
			return fmt.Errorf("%s: %w", it.Collection, ErrEmptyID)
		}
		b, err := json.Marshal(it.Entity)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", it.Collection, it.Entity.RecordID(), err)
		}
		payloads[i] = b
	}

	return s.keys.Use(func(key cryptox.Key) error {
		rows := make([]models.Record, len(batch))
		now := s.now().UTC()

		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, it := range batch {
			g.Go(func() error {
				env, err := cryptox.SealBytes(payloads[i], key)
				if err != nil {
					return err
				}
				rows[i] = sealedRow(it.Collection, it.Entity.RecordID(), env, now)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := records.NewSQLiteRepository(tx)
			for i := range rows {
				if err := repo.Upsert(ctx, &rows[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("import batch: %w", err)
		}
		s.log.Info(ctx, "batch imported", "count", len(rows))
		return nil
	})
}
