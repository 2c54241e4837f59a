package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
)

// CSVResult reports the outcome of a spreadsheet import.
type CSVResult struct {
	Imported int
	Skipped  int
}

// SpreadsheetService imports applications from CSV exports of a job
// tracking spreadsheet.
type SpreadsheetService interface {
	ImportCSV(ctx context.Context, r io.Reader) (CSVResult, error)
}

type spreadsheetService struct {
	store *store.Store
	log   logging.Logger
	now   func() time.Time
}

func NewSpreadsheetService(st *store.Store, log logging.Logger) SpreadsheetService {
	if log == nil {
		log = logging.Nop()
	}
	return &spreadsheetService{store: st, log: log.With("component", "spreadsheet"), now: time.Now}
}

var csvDateLayouts = []string{time.DateOnly, time.RFC3339, "01/02/2006"}

func parseCSVDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type csvColumns map[string]int

func (c csvColumns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ImportCSV reads a header row followed by one application per row.
// Required columns: company, position. Optional: status, date, url, notes.
// Rows without company or position are skipped; unknown statuses become
// Submitted and unparseable dates become the import time. Imported rows are
// written in a single batch.
func (s *spreadsheetService) ImportCSV(ctx context.Context, r io.Reader) (CSVResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return CSVResult{}, fmt.Errorf("%w: empty csv", ErrValidation)
	}
	if err != nil {
		return CSVResult{}, fmt.Errorf("read csv header: %w", err)
	}

	cols := csvColumns{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"company", "position"} {
		if _, ok := cols[required]; !ok {
			return CSVResult{}, fmt.Errorf("%w: csv header lacks %q column", ErrValidation, required)
		}
	}

	var (
		res   CSVResult
		batch []store.Item
		now   = s.now()
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return CSVResult{}, fmt.Errorf("read csv: %w", err)
		}

		company, position := cols.get(rec, "company"), cols.get(rec, "position")
		if company == "" || position == "" {
			res.Skipped++
			continue
		}

		submitted, ok := parseCSVDate(cols.get(rec, "date"))
		if !ok {
			submitted = now
		}
		app := models.NewApplication(company, position, submitted)
		if st, err := models.ParseStatus(cols.get(rec, "status")); err == nil {
			app.Status = st
		}
		app.JobURL = cols.get(rec, "url")
		if n := cols.get(rec, "notes"); n != "" {
			app.Notes = append(app.Notes, n)
		}

		batch = append(batch, store.Item{Collection: store.CollectionApplications, Entity: app})
		res.Imported++
	}

	if err := s.store.ImportBatch(ctx, batch); err != nil {
		return CSVResult{}, err
	}
	s.log.Info(ctx, "csv imported", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}
