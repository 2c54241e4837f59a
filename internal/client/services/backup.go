package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/filex"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
)

// Backup is the plaintext export document.
type Backup struct {
	Applications []models.Application         `json:"applications"`
	Resumes      []models.Resume              `json:"resumes"`
	Items        map[models.ItemType][]string `json:"items"`
	Questions    []models.PrepQuestion        `json:"questions"`
	ExportDate   time.Time                    `json:"exportDate"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Applications     int
	Resumes          int
	ItemGroups       int
	Questions        int
	SkippedItemTypes []string
}

// BackupService exports the decrypted vault and imports it back.
//
// Exports are never encrypted. Imports are sealed under the current
// session key, so a backup can be restored into a vault with a different
// password. Records with an existing id are overwritten.
type BackupService interface {
	Snapshot(ctx context.Context) (Backup, error)
	Export(ctx context.Context, w io.Writer) error
	// ExportFile writes the backup into dir and returns the file path.
	ExportFile(ctx context.Context, dir string) (string, error)
	Import(ctx context.Context, r io.Reader) (ImportResult, error)
}

type backupService struct {
	store *store.Store
	log   logging.Logger
	now   func() time.Time
}

func NewBackupService(st *store.Store, log logging.Logger) BackupService {
	if log == nil {
		log = logging.Nop()
	}
	return &backupService{store: st, log: log.With("component", "backup"), now: time.Now}
}

func (s *backupService) Snapshot(ctx context.Context) (Backup, error) {
	apps, err := store.GetAll[models.Application](ctx, s.store, store.CollectionApplications)
	if err != nil {
		return Backup{}, err
	}
	resumes, err := store.GetAll[models.Resume](ctx, s.store, store.CollectionResumes)
	if err != nil {
		return Backup{}, err
	}
	groups, err := store.GetAll[models.ToolboxGroup](ctx, s.store, store.CollectionItems)
	if err != nil {
		return Backup{}, err
	}
	questions, err := store.GetAll[models.PrepQuestion](ctx, s.store, store.CollectionPrepQuestions)
	if err != nil {
		return Backup{}, err
	}

	items := make(map[models.ItemType][]string, len(models.ItemTypes))
	for _, t := range models.ItemTypes {
		items[t] = []string{}
	}
	for _, g := range groups {
		if g.Items != nil {
			items[g.Type] = g.Items
		}
	}

	return Backup{
		Applications: apps,
		Resumes:      resumes,
		Items:        items,
		Questions:    questions,
		ExportDate:   s.now().UTC(),
	}, nil
}

func (s *backupService) Export(ctx context.Context, w io.Writer) error {
	b, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	s.log.Info(ctx, "backup exported",
		"applications", len(b.Applications), "resumes", len(b.Resumes), "questions", len(b.Questions))
	return nil
}

// BackupFileName is the name ExportFile uses for a backup taken at t.
func BackupFileName(t time.Time) string {
	return "jobkeeper-backup-" + t.UTC().Format(time.DateOnly) + ".json"
}

func (s *backupService) ExportFile(ctx context.Context, dir string) (string, error) {
	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		return "", err
	}
	path := filepath.Join(dir, BackupFileName(s.now()))
	if err := filex.WritePrivate(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// backupDocument is the import-side view; pointers tell a missing section
// from an empty one.
type backupDocument struct {
	Applications *[]models.Application        `json:"applications"`
	Resumes      *[]models.Resume             `json:"resumes"`
	Items        map[string][]json.RawMessage `json:"items"`
	Questions    []models.PrepQuestion        `json:"questions"`
}

func decodeBackup(r io.Reader) (backupDocument, error) {
	var doc backupDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	var missing []string
	if doc.Applications == nil {
		missing = append(missing, "applications")
	}
	if doc.Resumes == nil {
		missing = append(missing, "resumes")
	}
	if doc.Items == nil {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return doc, fmt.Errorf("%w: missing %v", ErrInvalidBackup, missing)
	}
	return doc, nil
}

// snippet turns one toolbox element into text. Older backups may hold
// objects instead of strings; those are kept as compact JSON.
func snippet(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (s *backupService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	doc, err := decodeBackup(r)
	if err != nil {
		return ImportResult{}, err
	}

	var (
		batch []store.Item
		res   ImportResult
	)
	for _, a := range *doc.Applications {
		ensureID(&a.ID)
		batch = append(batch, store.Item{Collection: store.CollectionApplications, Entity: a})
		res.Applications++
	}
	for _, rs := range *doc.Resumes {
		ensureID(&rs.ID)
		batch = append(batch, store.Item{Collection: store.CollectionResumes, Entity: rs})
		res.Resumes++
	}

	types := make([]string, 0, len(doc.Items))
	for t := range doc.Items {
		types = append(types, t)
	}
	slices.Sort(types)
	// Aliased keys share a group with their canonical type.
	groups := map[models.ItemType][]string{}
	var order []models.ItemType
	for _, t := range types {
		it, err := models.ParseItemType(t)
		if err != nil {
			res.SkippedItemTypes = append(res.SkippedItemTypes, t)
			continue
		}
		if _, seen := groups[it]; !seen {
			order = append(order, it)
			groups[it] = []string{}
		}
		for _, raw := range doc.Items[t] {
			sn, err := snippet(raw)
			if err != nil {
				return ImportResult{}, fmt.Errorf("%w: items.%s: %v", ErrInvalidBackup, t, err)
			}
			groups[it] = append(groups[it], sn)
		}
	}
	for _, it := range order {
		batch = append(batch, store.Item{Collection: store.CollectionItems, Entity: models.ToolboxGroup{Type: it, Items: groups[it]}})
		res.ItemGroups++
	}

	for _, q := range doc.Questions {
		ensureID(&q.ID)
		batch = append(batch, store.Item{Collection: store.CollectionPrepQuestions, Entity: q})
		res.Questions++
	}

	if err := s.store.ImportBatch(ctx, batch); err != nil {
		if errors.Is(err, store.ErrEmptyID) {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		return ImportResult{}, err
	}
	if len(res.SkippedItemTypes) > 0 {
		s.log.Warn(ctx, "unknown toolbox types skipped", "types", res.SkippedItemTypes)
	}
	s.log.Info(ctx, "backup imported", "records", len(batch))
	return res, nil
}
