package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
)

const appUsage = "Usage: app list | add | show <id> | status <id> <status> | note <id> | letter <id> | delete <id>"

func (a *App) findApplication(ctx context.Context, prefix string) (models.Application, error) {
	apps, err := a.apps.List(ctx)
	if err != nil {
		return models.Application{}, err
	}
	ids := make([]string, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}
	id, err := matchID(ids, prefix)
	if err != nil {
		return models.Application{}, err
	}
	return a.apps.Get(ctx, id)
}

// Applications dispatches the app subcommands.
func (a *App) Applications(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	if sub != "list" && sub != "add" && len(rest) == 0 {
		fmt.Fprintln(a.out, appUsage)
		return nil
	}

	switch sub {
	case "list":
		return a.listApplications(ctx)
	case "add":
		return a.addApplication(ctx)
	case "show":
		return a.showApplication(ctx, rest[0])
	case "status":
		if len(rest) < 2 {
			fmt.Fprintln(a.out, appUsage)
			return nil
		}
		return a.setApplicationStatus(ctx, rest[0], strings.Join(rest[1:], " "))
	case "note":
		return a.addApplicationNote(ctx, rest[0])
	case "letter":
		return a.setCoverLetter(ctx, rest[0])
	case "delete", "rm":
		return a.deleteApplication(ctx, rest[0])
	default:
		fmt.Fprintln(a.out, appUsage)
		return nil
	}
}

func (a *App) listApplications(ctx context.Context) error {
	apps, err := a.apps.List(ctx)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Fprintln(a.out, "No applications yet. Use 'app add'.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tSTATUS\tCOMPANY\tPOSITION")
	for _, app := range apps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(app.ID), app.SubmissionDate.Local().Format(time.DateOnly), app.Status, app.Company, app.Position)
	}
	return tw.Flush()
}

func (a *App) addApplication(ctx context.Context) error {
	company, err := GetSimpleText(a.reader, "Company", a.out)
	if err != nil {
		return err
	}
	position, err := GetSimpleText(a.reader, "Position", a.out)
	if err != nil {
		return err
	}
	url, err := GetSimpleText(a.reader, "Job posting URL (optional)", a.out)
	if err != nil {
		return err
	}
	desc, err := GetMultiline(a.reader, "Job description (optional)", a.out)
	if err != nil {
		return err
	}

	app, err := a.apps.Add(ctx, services.ApplicationInput{
		Company:        company,
		Position:       position,
		JobURL:         url,
		JobDescription: desc,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Application %s saved.\n", shortID(app.ID))
	return nil
}

func (a *App) showApplication(ctx context.Context, prefix string) error {
	app, err := a.findApplication(ctx, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s at %s\n", app.Position, app.Company)
	fmt.Fprintf(a.out, "ID:        %s\n", app.ID)
	fmt.Fprintf(a.out, "Status:    %s\n", app.Status)
	fmt.Fprintf(a.out, "Submitted: %s\n", app.SubmissionDate.Local().Format(time.DateOnly))
	if app.JobURL != "" {
		fmt.Fprintf(a.out, "Posting:   %s\n", app.JobURL)
	}
	if app.ResumeID != "" {
		fmt.Fprintf(a.out, "Resume:    %s\n", shortID(app.ResumeID))
	}
	if app.JobDescription != "" {
		fmt.Fprintf(a.out, "\n%s\n", app.JobDescription)
	}
	if len(app.Notes) > 0 {
		fmt.Fprintln(a.out, "\nNotes:")
		for _, n := range app.Notes {
			fmt.Fprintf(a.out, "  - %s\n", n)
		}
	}
	if app.CoverLetter != "" {
		fmt.Fprintf(a.out, "\nCover letter:\n%s\n", app.CoverLetter)
	}
	if len(app.JournalEntries) > 0 {
		fmt.Fprintf(a.out, "\nJournal: %d entries (see 'journal list')\n", len(app.JournalEntries))
	}
	return nil
}

func (a *App) setApplicationStatus(ctx context.Context, prefix, status string) error {
	app, err := a.findApplication(ctx, prefix)
	if err != nil {
		return err
	}
	app, err = a.apps.SetStatus(ctx, app.ID, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s at %s is now %s.\n", app.Position, app.Company, app.Status)
	return nil
}

func (a *App) addApplicationNote(ctx context.Context, prefix string) error {
	app, err := a.findApplication(ctx, prefix)
	if err != nil {
		return err
	}
	note, err := GetSimpleText(a.reader, "Note", a.out)
	if err != nil {
		return err
	}
	if note == "" {
		return nil
	}
	app.Notes = append(app.Notes, note)
	if err := a.apps.Update(ctx, app); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Note added.")
	return nil
}

func (a *App) setCoverLetter(ctx context.Context, prefix string) error {
	app, err := a.findApplication(ctx, prefix)
	if err != nil {
		return err
	}
	letter, err := GetMultiline(a.reader, "Cover letter", a.out)
	if err != nil {
		return err
	}
	app.CoverLetter = letter
	if err := a.apps.Update(ctx, app); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cover letter saved.")
	return nil
}

func (a *App) deleteApplication(ctx context.Context, prefix string) error {
	app, err := a.findApplication(ctx, prefix)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s at %s and its journal?", app.Position, app.Company), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.apps.Delete(ctx, app.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

const journalUsage = "Usage: journal list [oldest] | add <app id> | delete <app id> <entry id>"

// Journal dispatches the interview journal subcommands.
func (a *App) Journal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch sub, rest := args[0], args[1:]; {
	case sub == "list":
		newest := len(rest) == 0 || rest[0] != "oldest"
		return a.listJournal(ctx, newest)
	case sub == "add" && len(rest) == 1:
		return a.addJournalEntry(ctx, rest[0])
	case (sub == "delete" || sub == "rm") && len(rest) == 2:
		return a.deleteJournalEntry(ctx, rest[0], rest[1])
	default:
		fmt.Fprintln(a.out, journalUsage)
		return nil
	}
}

func (a *App) listJournal(ctx context.Context, newestFirst bool) error {
	items, err := a.apps.Entries(ctx, newestFirst)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "The journal is empty. Use 'journal add <app id>'.")
		return nil
	}
	for _, it := range items {
		e := it.Entry
		fmt.Fprintf(a.out, "[%s] %s  %s at %s (app %s)\n",
			shortID(e.ID), e.Date.Local().Format(time.DateOnly), it.Position, it.Company, shortID(it.ApplicationID))
		if e.Content != "" {
			fmt.Fprintf(a.out, "  %s\n", strings.ReplaceAll(e.Content, "\n", "\n  "))
		}
		for _, q := range e.Questions {
			fmt.Fprintf(a.out, "  Q: %s\n", q)
		}
		if e.Outcome != "" {
			fmt.Fprintf(a.out, "  Outcome: %s\n", e.Outcome)
		}
	}
	return nil
}

func (a *App) addJournalEntry(ctx context.Context, prefix string) error {
	app, err := a.findApplication(ctx, prefix)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "What happened in the interview?", a.out)
	if err != nil {
		return err
	}
	questions, err := GetList(a.reader, "Questions you were asked", a.out)
	if err != nil {
		return err
	}
	outcome, err := GetSimpleText(a.reader, "Outcome (optional)", a.out)
	if err != nil {
		return err
	}

	entry := models.NewJournalEntry(a.now(), content, questions, outcome)
	if _, err := a.apps.AddEntry(ctx, app.ID, entry); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Journal entry saved.")
	return nil
}

func (a *App) deleteJournalEntry(ctx context.Context, appPrefix, entryPrefix string) error {
	app, err := a.findApplication(ctx, appPrefix)
	if err != nil {
		return err
	}
	ids := make([]string, len(app.JournalEntries))
	for i, e := range app.JournalEntries {
		ids[i] = e.ID
	}
	id, err := matchID(ids, entryPrefix)
	if err != nil {
		return err
	}
	if err := a.apps.DeleteEntry(ctx, app.ID, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Journal entry deleted.")
	return nil
}
