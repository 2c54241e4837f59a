package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
)

// Export writes a plaintext backup into the given directory, or the
// configured export directory.
func (a *App) Export(ctx context.Context, args []string) error {
	dir := a.config.ExportDir
	if len(args) > 0 {
		dir = args[0]
	}
	warn.Fprintln(a.out, "The backup file is NOT encrypted. Anyone who can read it sees all your data.")

	path, err := a.backup.ExportFile(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup written to %s\n", path)
	return nil
}

// Import loads a backup file, sealing it under the current password.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: import <backup.json>")
		return nil
	}
	ok, err := Confirm(a.reader, "Records with the same id will be overwritten. Continue?", a.out)
	if err != nil || !ok {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.backup.Import(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d applications, %d resumes, %d toolbox groups, %d questions.\n",
		res.Applications, res.Resumes, res.ItemGroups, res.Questions)
	if len(res.SkippedItemTypes) > 0 {
		fmt.Fprintf(a.out, "Skipped unknown toolbox types: %s\n", strings.Join(res.SkippedItemTypes, ", "))
	}
	return nil
}

// ImportCSV adds applications from a spreadsheet export.
func (a *App) ImportCSV(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: import-csv <applications.csv>")
		return nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.sheet.ImportCSV(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d applications, skipped %d rows.\n", res.Imported, res.Skipped)
	return nil
}

// Stats prints the pipeline summary.
func (a *App) Stats(ctx context.Context, _ []string) error {
	s, err := a.stats.Compute(ctx, a.now())
	if err != nil {
		return err
	}
	a.printStats(s)
	return nil
}

func (a *App) printStats(s services.Stats) {
	fmt.Fprintf(a.out, "Total applications: %d\n", s.Total)
	fmt.Fprintf(a.out, "Today: %d   Last 7 days: %d   Last 30 days: %d\n", s.Today, s.LastWeek, s.LastMonth)
	fmt.Fprintf(a.out, "Average per day (30 days): %.1f\n", s.PerDay)
	fmt.Fprintf(a.out, "Streak: %d days\n", s.Streak)
	fmt.Fprintf(a.out, "Response rate: %.1f%%\n", s.ResponseRate)
	fmt.Fprintf(a.out, "Stale (over 3 months, no answer): %d (%.1f%%)\n", s.Stale, s.StalePercentage)

	if len(s.ByStatus) == 0 {
		return
	}
	labels := make([]string, 0, len(s.ByStatus))
	for l := range s.ByStatus {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	fmt.Fprintln(a.out, "By status:")
	for _, l := range labels {
		fmt.Fprintf(a.out, "  %-34s %d\n", l, s.ByStatus[l])
	}

	fmt.Fprintln(a.out, "Last 7 days:")
	today := a.now()
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		n := s.Daily[day]
		fmt.Fprintf(a.out, "  %s %s %d\n", day, strings.Repeat("#", n), n)
	}
}
