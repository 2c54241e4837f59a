package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
)

// Labels used in Stats.ByStatus for Submitted applications.
const (
	LabelSubmittedRecent = "Submitted for less than 3 months"
	LabelSubmittedStale  = "Submitted for more than 3 months"
)

// Stats summarises the application pipeline.
type Stats struct {
	Total     int
	Today     int
	LastWeek  int
	LastMonth int

	// ByStatus counts applications per status; Submitted is split by age.
	ByStatus map[string]int

	// Stale counts Submitted applications older than three months.
	Stale           int
	StalePercentage float64

	// PerDay is the average over the last 30 days.
	PerDay float64

	// Streak is the number of consecutive days with at least one
	// application, ending today or yesterday.
	Streak int

	// ResponseRate is the share of Interviewing applications, in percent.
	ResponseRate float64

	// Daily counts applications per local calendar day (YYYY-MM-DD).
	Daily map[string]int
}

type StatsService interface {
	Compute(ctx context.Context, now time.Time) (Stats, error)
}

type statsService struct {
	store *store.Store
}

func NewStatsService(st *store.Store) StatsService {
	return &statsService{store: st}
}

func (s *statsService) Compute(ctx context.Context, now time.Time) (Stats, error) {
	apps, err := store.GetAll[models.Application](ctx, s.store, store.CollectionApplications)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(apps, now), nil
}

func dayKey(t time.Time) string { return t.Format(time.DateOnly) }

// ComputeStats is Compute over an in-memory list. Day boundaries follow
// now's location.
func ComputeStats(apps []models.Application, now time.Time) Stats {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)
	threeMonthsAgo := now.AddDate(0, -3, 0)

	st := Stats{
		Total:    len(apps),
		ByStatus: map[string]int{},
		Daily:    map[string]int{},
	}
	for _, a := range apps {
		submitted := a.SubmissionDate.In(loc)
		if !submitted.Before(today) {
			st.Today++
		}
		if !submitted.Before(weekAgo) {
			st.LastWeek++
		}
		if !submitted.Before(monthAgo) {
			st.LastMonth++
		}
		st.Daily[dayKey(submitted)]++

		label := string(a.Status)
		if a.Status == models.StatusSubmitted {
			if submitted.Before(threeMonthsAgo) {
				label = LabelSubmittedStale
				st.Stale++
			} else {
				label = LabelSubmittedRecent
			}
		}
		st.ByStatus[label]++
	}

	if st.Total > 0 {
		st.StalePercentage = float64(st.Stale) / float64(st.Total) * 100
		st.ResponseRate = float64(st.ByStatus[string(models.StatusInterviewing)]) / float64(st.Total) * 100
		st.PerDay = float64(st.LastMonth) / 30
	}

	day := today
	if st.Daily[dayKey(day)] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	for st.Daily[dayKey(day)] > 0 {
		st.Streak++
		day = day.AddDate(0, 0, -1)
	}
	return st
}
