package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
)

// ToolboxService manages reusable resume snippets grouped by item type.
// Each type is one record keyed by its tag.
type ToolboxService interface {
	// All returns a group for every known type, empty when nothing is stored.
	All(ctx context.Context) (map[models.ItemType][]string, error)
	Add(ctx context.Context, itemType, snippet string) error
	Remove(ctx context.Context, itemType string, index int) error
	Save(ctx context.Context, itemType string, items []string) error
}

type toolboxService struct {
	store *store.Store
}

func NewToolboxService(st *store.Store) ToolboxService {
	return &toolboxService{store: st}
}

func parseItemType(t string) (models.ItemType, error) {
	it, err := models.ParseItemType(t)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownItemType, err)
	}
	return it, nil
}

func (s *toolboxService) All(ctx context.Context) (map[models.ItemType][]string, error) {
	groups, err := store.GetAll[models.ToolboxGroup](ctx, s.store, store.CollectionItems)
	if err != nil {
		return nil, err
	}
	out := make(map[models.ItemType][]string, len(models.ItemTypes))
	for _, t := range models.ItemTypes {
		out[t] = []string{}
	}
	for _, g := range groups {
		if g.Items == nil {
			g.Items = []string{}
		}
		out[g.Type] = g.Items
	}
	return out, nil
}

func (s *toolboxService) Add(ctx context.Context, itemType, snippet string) error {
	it, err := parseItemType(itemType)
	if err != nil {
		return err
	}
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return fmt.Errorf("%w: snippet is empty", ErrValidation)
	}
	all, err := s.All(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, it, append(all[it], snippet))
}

func (s *toolboxService) Remove(ctx context.Context, itemType string, index int) error {
	it, err := parseItemType(itemType)
	if err != nil {
		return err
	}
	all, err := s.All(ctx)
	if err != nil {
		return err
	}
	items := all[it]
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %d", ErrInvalidItemIndex, index)
	}
	items = append(items[:index:index], items[index+1:]...)
	return s.save(ctx, it, items)
}

func (s *toolboxService) Save(ctx context.Context, itemType string, items []string) error {
	it, err := parseItemType(itemType)
	if err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	return s.save(ctx, it, items)
}

func (s *toolboxService) save(ctx context.Context, it models.ItemType, items []string) error {
	g := models.ToolboxGroup{Type: it, Items: items}
	if err := s.store.Save(ctx, store.CollectionItems, g); err != nil {
		return fmt.Errorf("save %s: %w", it, err)
	}
	return nil
}
