package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
)

// ApplicationInput carries the editable fields of an application.
type ApplicationInput struct {
	Company        string
	Position       string
	ResumeID       string
	Notes          []string
	JobURL         string
	JobDescription string
	CoverLetter    string
}

// JournalItem is a journal entry together with the application it belongs to.
type JournalItem struct {
	ApplicationID string
	Company       string
	Position      string
	Entry         models.JournalEntry
}

// ApplicationService manages applications and their interview journal.
// Every change rewrites the whole application record.
type ApplicationService interface {
	List(ctx context.Context) ([]models.Application, error)
	Get(ctx context.Context, id string) (models.Application, error)
	Add(ctx context.Context, in ApplicationInput) (models.Application, error)
	Update(ctx context.Context, app models.Application) error
	SetStatus(ctx context.Context, id, status string) (models.Application, error)
	Delete(ctx context.Context, id string) error

	AddEntry(ctx context.Context, appID string, entry models.JournalEntry) (models.JournalEntry, error)
	UpdateEntry(ctx context.Context, appID string, entry models.JournalEntry) error
	DeleteEntry(ctx context.Context, appID, entryID string) error
	Entries(ctx context.Context, newestFirst bool) ([]JournalItem, error)
}

type applicationService struct {
	store *store.Store
	now   func() time.Time
}

func NewApplicationService(st *store.Store) ApplicationService {
	return &applicationService{store: st, now: time.Now}
}

// List returns applications newest submission first.
func (s *applicationService) List(ctx context.Context) ([]models.Application, error) {
	apps, err := store.GetAll[models.Application](ctx, s.store, store.CollectionApplications)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(apps, func(a, b models.Application) int {
		return b.SubmissionDate.Compare(a.SubmissionDate)
	})
	return apps, nil
}

func (s *applicationService) Get(ctx context.Context, id string) (models.Application, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return models.Application{}, err
	}
	for _, a := range apps {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Application{}, fmt.Errorf("application %s: %w", id, ErrNotFound)
}

func validateApplication(company, position string) error {
	if strings.TrimSpace(company) == "" || strings.TrimSpace(position) == "" {
		return fmt.Errorf("%w: company and position are required", ErrValidation)
	}
	return nil
}

func (s *applicationService) Add(ctx context.Context, in ApplicationInput) (models.Application, error) {
	if err := validateApplication(in.Company, in.Position); err != nil {
		return models.Application{}, err
	}
	app := models.NewApplication(strings.TrimSpace(in.Company), strings.TrimSpace(in.Position), s.now())
	app.ResumeID = in.ResumeID
	if in.Notes != nil {
		app.Notes = in.Notes
	}
	app.JobURL = in.JobURL
	app.JobDescription = in.JobDescription
	app.CoverLetter = in.CoverLetter

	if err := s.store.Save(ctx, store.CollectionApplications, app); err != nil {
		return models.Application{}, fmt.Errorf("save application: %w", err)
	}
	return app, nil
}

func (s *applicationService) Update(ctx context.Context, app models.Application) error {
	if err := validateApplication(app.Company, app.Position); err != nil {
		return err
	}
	if _, err := models.ParseStatus(string(app.Status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	if _, err := s.Get(ctx, app.ID); err != nil {
		return err
	}
	if err := s.store.Save(ctx, store.CollectionApplications, app); err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (s *applicationService) SetStatus(ctx context.Context, id, status string) (models.Application, error) {
	st, err := models.ParseStatus(status)
	if err != nil {
		return models.Application{}, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	app, err := s.Get(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	app.Status = st
	if err := s.store.Save(ctx, store.CollectionApplications, app); err != nil {
		return models.Application{}, fmt.Errorf("save application: %w", err)
	}
	return app, nil
}

func (s *applicationService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.CollectionApplications, id)
}

func (s *applicationService) AddEntry(ctx context.Context, appID string, entry models.JournalEntry) (models.JournalEntry, error) {
	app, err := s.Get(ctx, appID)
	if err != nil {
		return models.JournalEntry{}, err
	}
	if entry.ID == "" {
		entry = models.NewJournalEntry(entry.Date, entry.Content, entry.Questions, entry.Outcome)
	}
	if entry.Date.IsZero() {
		entry.Date = s.now().UTC()
	}
	app.JournalEntries = append(app.JournalEntries, entry)

	if err := s.store.Save(ctx, store.CollectionApplications, app); err != nil {
		return models.JournalEntry{}, fmt.Errorf("save application: %w", err)
	}
	return entry, nil
}

func (s *applicationService) UpdateEntry(ctx context.Context, appID string, entry models.JournalEntry) error {
	app, err := s.Get(ctx, appID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(app.JournalEntries, func(e models.JournalEntry) bool { return e.ID == entry.ID })
	if i < 0 {
		return fmt.Errorf("journal entry %s: %w", entry.ID, ErrNotFound)
	}
	app.JournalEntries[i] = entry
	return s.store.Save(ctx, store.CollectionApplications, app)
}

func (s *applicationService) DeleteEntry(ctx context.Context, appID, entryID string) error {
	app, err := s.Get(ctx, appID)
	if err != nil {
		return err
	}
	before := len(app.JournalEntries)
	app.JournalEntries = slices.DeleteFunc(app.JournalEntries, func(e models.JournalEntry) bool { return e.ID == entryID })
	if len(app.JournalEntries) == before {
		return nil
	}
	return s.store.Save(ctx, store.CollectionApplications, app)
}

// Entries flattens the journals of all applications, sorted by entry date.
func (s *applicationService) Entries(ctx context.Context, newestFirst bool) ([]JournalItem, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var items []JournalItem
	for _, a := range apps {
		for _, e := range a.JournalEntries {
			items = append(items, JournalItem{
				ApplicationID: a.ID,
				Company:       a.Company,
				Position:      a.Position,
				Entry:         e,
			})
		}
	}
	slices.SortStableFunc(items, func(a, b JournalItem) int {
		if newestFirst {
			return b.Entry.Date.Compare(a.Entry.Date)
		}
		return a.Entry.Date.Compare(b.Entry.Date)
	})
	return items, nil
}
