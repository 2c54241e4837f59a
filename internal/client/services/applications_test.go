package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/session"
)

func TestApplications_AddListStatusDelete(t *testing.T) {
	svc := NewApplicationService(unlockedStore(t))
	ctx := context.Background()

	_, err := svc.Add(ctx, ApplicationInput{Company: " ", Position: "Dev"})
	require.ErrorIs(t, err, ErrValidation)

	a, err := svc.Add(ctx, ApplicationInput{Company: " Acme ", Position: "Dev", Notes: []string{"referral"}, JobURL: "https://acme.test/jobs/1"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", a.Company)
	assert.Equal(t, models.StatusSubmitted, a.Status)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"referral"}, list[0].Notes)

	_, err = svc.SetStatus(ctx, a.ID, "bogus")
	require.ErrorIs(t, err, ErrInvalidStatus)

	upd, err := svc.SetStatus(ctx, a.ID, "offer")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOfferReceived, upd.Status)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOfferReceived, got.Status)

	_, err = svc.SetStatus(ctx, "missing", "Rejected")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApplications_ListNewestFirst(t *testing.T) {
	st := unlockedStore(t)
	svc := NewApplicationService(st).(*applicationService)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	older, err := svc.Add(ctx, ApplicationInput{Company: "Old", Position: "Dev"})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	newer, err := svc.Add(ctx, ApplicationInput{Company: "New", Position: "Dev"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestApplications_Update(t *testing.T) {
	svc := NewApplicationService(unlockedStore(t))
	ctx := context.Background()

	a, err := svc.Add(ctx, ApplicationInput{Company: "Acme", Position: "Dev"})
	require.NoError(t, err)

	a.CoverLetter = "Dear Acme"
	require.NoError(t, svc.Update(ctx, a))
	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dear Acme", got.CoverLetter)

	a.Status = "Ghosted"
	require.ErrorIs(t, svc.Update(ctx, a), ErrInvalidStatus)

	ghost := models.NewApplication("X", "Y", time.Now())
	require.ErrorIs(t, svc.Update(ctx, ghost), ErrNotFound)
}

func TestApplications_Journal(t *testing.T) {
	svc := NewApplicationService(unlockedStore(t))
	ctx := context.Background()

	a, err := svc.Add(ctx, ApplicationInput{Company: "Acme", Position: "Dev"})
	require.NoError(t, err)
	b, err := svc.Add(ctx, ApplicationInput{Company: "Globex", Position: "SRE"})
	require.NoError(t, err)

	d1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	e1, err := svc.AddEntry(ctx, a.ID, models.JournalEntry{Date: d1, Content: "phone screen"})
	require.NoError(t, err)
	assert.NotEmpty(t, e1.ID)
	assert.Equal(t, []string{}, e1.Questions)
	_, err = svc.AddEntry(ctx, b.ID, models.JournalEntry{Date: d2, Content: "onsite", Questions: []string{"design a cache"}})
	require.NoError(t, err)

	_, err = svc.AddEntry(ctx, "missing", models.JournalEntry{Content: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	items, err := svc.Entries(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Globex", items[0].Company)
	assert.Equal(t, "Acme", items[1].Company)

	items, err = svc.Entries(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Acme", items[0].Company)

	e1.Outcome = "passed"
	require.NoError(t, svc.UpdateEntry(ctx, a.ID, e1))
	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.JournalEntries, 1)
	assert.Equal(t, "passed", got.JournalEntries[0].Outcome)

	require.ErrorIs(t, svc.UpdateEntry(ctx, a.ID, models.JournalEntry{ID: "nope"}), ErrNotFound)

	require.NoError(t, svc.DeleteEntry(ctx, a.ID, e1.ID))
	require.NoError(t, svc.DeleteEntry(ctx, a.ID, e1.ID))
	got, err = svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.JournalEntries)
}

func TestApplications_LockedStore(t *testing.T) {
	st := unlockedStore(t)
	svc := NewApplicationService(st)
	ctx := context.Background()

	_, err := svc.Add(ctx, ApplicationInput{Company: "Acme", Position: "Dev"})
	require.NoError(t, err)

	st.Keys().Clear()
	_, err = svc.List(ctx)
	require.ErrorIs(t, err, session.ErrKeyNotSet)
	_, err = svc.Add(ctx, ApplicationInput{Company: "Acme", Position: "Dev"})
	require.ErrorIs(t, err, session.ErrKeyNotSet)
}
