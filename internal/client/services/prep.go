package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
)

// PrepService manages the interview question bank.
type PrepService interface {
	// List returns questions newest first. An empty category returns all.
	List(ctx context.Context, category string) ([]models.PrepQuestion, error)
	Add(ctx context.Context, category string, questions []string, answer string, sources []string) (models.PrepQuestion, error)
	Update(ctx context.Context, q models.PrepQuestion) error
	Delete(ctx context.Context, id string) error
}

type prepService struct {
	store *store.Store
}

func NewPrepService(st *store.Store) PrepService {
	return &prepService{store: st}
}

func parseCategory(c string) (models.PrepCategory, error) {
	cat, err := models.ParseCategory(c)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}
	return cat, nil
}

func (s *prepService) List(ctx context.Context, category string) ([]models.PrepQuestion, error) {
	var filter models.PrepCategory
	if strings.TrimSpace(category) != "" {
		c, err := parseCategory(category)
		if err != nil {
			return nil, err
		}
		filter = c
	}

	qs, err := store.GetAll[models.PrepQuestion](ctx, s.store, store.CollectionPrepQuestions)
	if err != nil {
		return nil, err
	}
	if filter != "" {
		qs = slices.DeleteFunc(qs, func(q models.PrepQuestion) bool { return q.Category != filter })
	}
	slices.SortStableFunc(qs, func(a, b models.PrepQuestion) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return qs, nil
}

func cleanQuestions(qs []string) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func (s *prepService) Add(ctx context.Context, category string, questions []string, answer string, sources []string) (models.PrepQuestion, error) {
	cat, err := parseCategory(category)
	if err != nil {
		return models.PrepQuestion{}, err
	}
	questions = cleanQuestions(questions)
	if len(questions) == 0 {
		return models.PrepQuestion{}, fmt.Errorf("%w: at least one question is required", ErrValidation)
	}

	q := models.NewPrepQuestion(cat, questions, answer, sources)
	if err := s.store.Save(ctx, store.CollectionPrepQuestions, q); err != nil {
		return models.PrepQuestion{}, fmt.Errorf("save question: %w", err)
	}
	return q, nil
}

func (s *prepService) Update(ctx context.Context, q models.PrepQuestion) error {
	if _, err := parseCategory(string(q.Category)); err != nil {
		return err
	}
	q.Questions = cleanQuestions(q.Questions)
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrValidation)
	}

	all, err := s.List(ctx, "")
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(all, func(x models.PrepQuestion) bool { return x.ID == q.ID }) {
		return fmt.Errorf("question %s: %w", q.ID, ErrNotFound)
	}
	return s.store.Save(ctx, store.CollectionPrepQuestions, q)
}

func (s *prepService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.CollectionPrepQuestions, id)
}
