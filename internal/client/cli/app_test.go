package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/config"
	"github.com/dmitrijs2005/jobkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePasswords answers password prompts in order.
func fakePasswords(pws ...string) func(io.Writer, string) ([]byte, error) {
	return func(io.Writer, string) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
}

func newTestApp(t *testing.T, dbPath, input string, passwords ...string) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = dbPath
	cfg.ExportDir = t.TempDir()
	cfg.AutoLock = 0

	a, err := NewApp(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.db.Close() })

	var out bytes.Buffer
	a.out = &out
	a.reader = bufio.NewReader(strings.NewReader(input))
	a.password = fakePasswords(passwords...)
	return a, &out
}

// unlockedApp returns an App with a freshly created vault.
func unlockedApp(t *testing.T, input string, passwords ...string) (*App, *bytes.Buffer) {
	t.Helper()
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "jk.db"), input, append([]string{"pw", "pw"}, passwords...)...)
	require.NoError(t, a.Setup(context.Background(), nil))
	require.True(t, a.isUnlocked())
	return a, out
}

func TestNewApp_BadDatabasePath(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = t.TempDir()

	_, err := NewApp(context.Background(), cfg, nil)
	require.ErrorIs(t, err, localdb.ErrInitialization)
}

func TestApp_RunFirstStartStoresCiphertext(t *testing.T) {
	capturePrintln(t)
	path := filepath.Join(t.TempDir(), "jk.db")

	a, out := newTestApp(t, path, strings.Join([]string{
		"app add", "Acme", "Engineer", "", "",
		"app list",
		"exit",
	}, "\n")+"\n", "pw", "pw")
	require.NoError(t, a.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Vault created and unlocked.")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "Engineer")

	db, err := localdb.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var kind string
	var ciphertext []byte
	require.NoError(t, db.QueryRow(
		`SELECT kind, ciphertext FROM records WHERE collection = 'applications'`).Scan(&kind, &ciphertext))
	assert.Equal(t, string(models.RecordSealed), kind)
	assert.NotContains(t, string(ciphertext), "Acme")
}

func TestApp_RunSetupPasswordMismatch(t *testing.T) {
	capturePrintln(t)
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "jk.db"), "exit\n", "one", "two")
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), services.ErrPasswordMismatch.Error())
	assert.Equal(t, services.StateNeedsSetup, a.vault.State())
}

func TestApp_RunWrongPasswordThenUnlock(t *testing.T) {
	repl := capturePrintln(t)
	path := filepath.Join(t.TempDir(), "jk.db")

	first, _ := newTestApp(t, path, "app add\nAcme\nEngineer\n\n\nexit\n", "right", "right")
	require.NoError(t, first.Run(context.Background()))

	a, out := newTestApp(t, path, "app list\nunlock\napp list\nexit\n", "wrong", "right")
	require.NoError(t, a.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, msgWrongPassword)
	assert.Contains(t, text, "Unlocked.")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, repl.String(), msgLocked)
}

func TestApp_Reset(t *testing.T) {
	repl := capturePrintln(t)
	a, out := unlockedApp(t, "reset\ny\nnope\nreset\ny\nRESET\nexit\n")
	_, err := a.apps.Add(context.Background(), services.ApplicationInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	runREPL(context.Background(), a, a.status, a.reader)

	assert.Contains(t, repl.String(), "Reset cancelled.")
	assert.Contains(t, out.String(), "All local data erased.")
	assert.Equal(t, services.StateNeedsSetup, a.vault.State())
}

func TestApp_ApplicationsAndJournal(t *testing.T) {
	ctx := context.Background()
	a, out := unlockedApp(t, strings.Join([]string{
		"Met the team lead", "",
		"system design, salary",
		"next round",
		"follow up on Friday",
		"y",
	}, "\n")+"\n")

	app, err := a.apps.Add(ctx, services.ApplicationInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)
	prefix := shortID(app.ID)

	require.NoError(t, a.Applications(ctx, []string{"status", prefix, "offer"}))
	require.NoError(t, a.Journal(ctx, []string{"add", prefix}))
	require.NoError(t, a.Applications(ctx, []string{"note", prefix}))

	got, err := a.apps.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOfferReceived, got.Status)
	assert.Equal(t, []string{"follow up on Friday"}, got.Notes)
	require.Len(t, got.JournalEntries, 1)
	assert.Equal(t, "Met the team lead", got.JournalEntries[0].Content)
	assert.Equal(t, []string{"system design", "salary"}, got.JournalEntries[0].Questions)
	assert.Equal(t, "next round", got.JournalEntries[0].Outcome)

	out.Reset()
	require.NoError(t, a.Journal(ctx, nil))
	assert.Contains(t, out.String(), "Q: salary")

	out.Reset()
	require.NoError(t, a.Applications(ctx, []string{"show", prefix}))
	assert.Contains(t, out.String(), "Offer Received")

	require.NoError(t, a.Applications(ctx, []string{"delete", prefix}))
	apps, err := a.apps.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)

	err = a.Applications(ctx, []string{"show", "zzzz"})
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestApp_LibraryCommands(t *testing.T) {
	ctx := context.Background()
	md := filepath.Join(t.TempDir(), "backend.md")
	require.NoError(t, os.WriteFile(md, []byte("# Jane Doe\nGo developer"), 0o600))

	a, out := unlockedApp(t, strings.Join([]string{
		"",
		"go, sql",
		"Built things", "",
		"technical",
		"What is a goroutine?", "",
		"A lightweight thread.", "",
		"",
		"Kubernetes", "",
	}, "\n")+"\n")

	require.NoError(t, a.Resumes(ctx, []string{"add", md}))
	rs, err := a.resumes.List(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "backend", rs[0].Name)
	assert.Equal(t, []string{"go", "sql"}, rs[0].Tags)

	require.NoError(t, a.Resumes(ctx, []string{"section", shortID(rs[0].ID), "Experience"}))
	out.Reset()
	require.NoError(t, a.Resumes(ctx, []string{"show", shortID(rs[0].ID)}))
	assert.Contains(t, out.String(), "## Experience")

	require.NoError(t, a.Prep(ctx, []string{"add"}))
	out.Reset()
	require.NoError(t, a.Prep(ctx, []string{"list", "technical"}))
	assert.Contains(t, out.String(), "What is a goroutine?")

	require.NoError(t, a.Toolbox(ctx, []string{"add", "skills"}))
	out.Reset()
	require.NoError(t, a.Toolbox(ctx, []string{"list", "skills"}))
	assert.Contains(t, out.String(), "1. Kubernetes")

	require.NoError(t, a.Toolbox(ctx, []string{"remove", "skills", "1"}))
	all, err := a.toolbox.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all[models.ItemSkills])

	err = a.Toolbox(ctx, []string{"remove", "skills", "1"})
	require.ErrorIs(t, err, services.ErrInvalidItemIndex)
}

func TestApp_ExportImportIntoAnotherVault(t *testing.T) {
	ctx := context.Background()
	src, out := unlockedApp(t, "")
	_, err := src.apps.Add(ctx, services.ApplicationInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	require.NoError(t, src.Export(ctx, nil))
	assert.Contains(t, out.String(), "NOT encrypted")

	files, err := filepath.Glob(filepath.Join(src.config.ExportDir, "jobkeeper-backup-*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Acme")

	dst, dstOut := newTestApp(t, filepath.Join(t.TempDir(), "other.db"), "y\n", "other", "other")
	require.NoError(t, dst.Setup(ctx, nil))
	require.NoError(t, dst.Import(ctx, []string{files[0]}))
	assert.Contains(t, dstOut.String(), "Imported 1 applications")

	apps, err := dst.apps.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Acme", apps[0].Company)
}

func TestApp_ImportCSVAndStats(t *testing.T) {
	ctx := context.Background()
	csvPath := filepath.Join(t.TempDir(), "apps.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Company,Position,Status,Date\nAcme,Engineer,Interviewing,2024-05-01\n,Nobody,Submitted,2024-05-01\n"), 0o600))

	a, out := unlockedApp(t, "")
	require.NoError(t, a.ImportCSV(ctx, []string{csvPath}))
	assert.Contains(t, out.String(), "Imported 1 applications, skipped 1 rows.")

	out.Reset()
	require.NoError(t, a.Stats(ctx, nil))
	assert.Contains(t, out.String(), "Total applications: 1")
	assert.Contains(t, out.String(), "Response rate: 100.0%")
}

func TestApp_ChangePasswordAndUnlock(t *testing.T) {
	ctx := context.Background()
	a, _ := unlockedApp(t, "", "new", "new", "pw", "new")
	_, err := a.apps.Add(ctx, services.ApplicationInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	require.NoError(t, a.ChangePassword(ctx, nil))
	require.NoError(t, a.Lock(ctx, nil))
	require.False(t, a.isUnlocked())

	err = a.Unlock(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, msgWrongPassword, userMessage(err))

	require.NoError(t, a.Unlock(ctx, nil))
	apps, err := a.apps.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
}

func TestApp_LockIfIdle(t *testing.T) {
	ctx := context.Background()
	a, _ := unlockedApp(t, "")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	a.touch()

	now = now.Add(time.Minute)
	require.False(t, a.lockIfIdle(ctx, 5*time.Minute))
	require.True(t, a.isUnlocked())

	now = now.Add(5 * time.Minute)
	require.True(t, a.lockIfIdle(ctx, 5*time.Minute))
	require.False(t, a.isUnlocked())
	require.False(t, a.lockIfIdle(ctx, 5*time.Minute), "already locked")
}

func TestApp_StartAutoLockWatcher(t *testing.T) {
	repl := capturePrintln(t)
	a, _ := unlockedApp(t, "")
	a.lockTick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartAutoLockWatcher(ctx, time.Nanosecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return !a.isUnlocked() }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Contains(t, repl.String(), "Vault locked after inactivity.")
}
