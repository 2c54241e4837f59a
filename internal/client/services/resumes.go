package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
)

type ResumeService interface {
	List(ctx context.Context) ([]models.Resume, error)
	Get(ctx context.Context, id string) (models.Resume, error)
	Add(ctx context.Context, name string, tags []string, content string) (models.Resume, error)
	SetSection(ctx context.Context, id, title, body string) (models.Resume, error)
	Delete(ctx context.Context, id string) error
}

type resumeService struct {
	store *store.Store
}

func NewResumeService(st *store.Store) ResumeService {
	return &resumeService{store: st}
}

// List returns resumes sorted by name.
func (s *resumeService) List(ctx context.Context) ([]models.Resume, error) {
	rs, err := store.GetAll[models.Resume](ctx, s.store, store.CollectionResumes)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rs, func(a, b models.Resume) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return rs, nil
}

func (s *resumeService) Get(ctx context.Context, id string) (models.Resume, error) {
	rs, err := s.List(ctx)
	if err != nil {
		return models.Resume{}, err
	}
	for _, r := range rs {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Resume{}, fmt.Errorf("resume %s: %w", id, ErrNotFound)
}

func (s *resumeService) Add(ctx context.Context, name string, tags []string, content string) (models.Resume, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Resume{}, fmt.Errorf("%w: resume name is required", ErrValidation)
	}
	r := models.NewResume(name, tags, content)
	if err := s.store.Save(ctx, store.CollectionResumes, r); err != nil {
		return models.Resume{}, fmt.Errorf("save resume: %w", err)
	}
	return r, nil
}

func (s *resumeService) SetSection(ctx context.Context, id, title, body string) (models.Resume, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Resume{}, fmt.Errorf("%w: section title is required", ErrValidation)
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return models.Resume{}, err
	}
	r.SetSection(title, body)
	if err := s.store.Save(ctx, store.CollectionResumes, r); err != nil {
		return models.Resume{}, fmt.Errorf("save resume: %w", err)
	}
	return r, nil
}

func (s *resumeService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.CollectionResumes, id)
}
