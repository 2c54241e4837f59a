package records

import (
	"context"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
)

// Repository describes storage operations for records rows.
type Repository interface {
	// Upsert inserts the row or replaces the one with the same
	// (collection, id).
	Upsert(ctx context.Context, rec *models.Record) error

	// Get returns (nil, nil) when the row does not exist.
	Get(ctx context.Context, collection, id string) (*models.Record, error)

	// List returns the rows of one collection ordered by id.
	List(ctx context.Context, collection string) ([]models.Record, error)

	// ListAll returns every row ordered by collection and id.
	ListAll(ctx context.Context) ([]models.Record, error)

	// Delete removes a row. Deleting a missing row is not an error.
	Delete(ctx context.Context, collection, id string) error

	Count(ctx context.Context, collection string) (int, error)

	// Collections returns the distinct collection names present.
	Collections(ctx context.Context) ([]string, error)

	// Clear removes every row.
	Clear(ctx context.Context) error
}
