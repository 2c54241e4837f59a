package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/config"
	"github.com/dmitrijs2005/jobkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
	"github.com/dmitrijs2005/jobkeeper/internal/client/session"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"golang.org/x/term"
)

type App struct {
	config *config.Config
	db     *sql.DB
	log    logging.Logger

	vault   services.VaultService
	apps    services.ApplicationService
	resumes services.ResumeService
	prep    services.PrepService
	toolbox services.ToolboxService
	backup  services.BackupService
	sheet   services.SpreadsheetService
	stats   services.StatsService

	reader *bufio.Reader
	out    io.Writer

	// password reads a secret; it falls back to a plain line when stdin
	// is not a terminal.
	password func(w io.Writer, prompt string) ([]byte, error)
	now      func() time.Time

	// lastActive holds unix nanoseconds of the last command.
	lastActive atomic.Int64
	lockTick   time.Duration
}

// NewApp opens the local database and builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	kdf, err := c.KDFParams()
	if err != nil {
		return nil, err
	}

	db, err := localdb.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	st := store.New(db, session.NewKeyRing(), log)

	a := &App{
		config:   c,
		db:       db,
		log:      log,
		vault:    services.NewVaultService(st, kdf, log),
		apps:     services.NewApplicationService(st),
		resumes:  services.NewResumeService(st),
		prep:     services.NewPrepService(st),
		toolbox:  services.NewToolboxService(st),
		backup:   services.NewBackupService(st, log),
		sheet:    services.NewSpreadsheetService(st, log),
		stats:    services.NewStatsService(st),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		lockTick: time.Second,
	}
	a.password = a.readSecret
	a.touch()
	return a, nil
}

func (a *App) readSecret(w io.Writer, prompt string) ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return GetPassword(w, prompt)
	}
	line, err := GetSimpleText(a.reader, prompt, w)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// Close forgets the key and closes the database.
func (a *App) Close() error {
	a.vault.Lock()
	return a.db.Close()
}

// Run greets the user, resolves setup or unlock, then serves the REPL until
// exit. The auto-lock watcher runs for the lifetime of the REPL.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "jobkeeper: your job search, encrypted on this machine. Type 'help' for commands.")

	state, err := a.vault.Check(ctx)
	if err != nil {
		return err
	}
	switch state {
	case services.StateNeedsSetup:
		fmt.Fprintln(a.out, "No vault found. Choose a password to create one.")
		a.report(a.Setup(ctx, nil))
	case services.StateNeedsUnlock:
		a.report(a.Unlock(ctx, nil))
	}

	if a.config.AutoLock > 0 {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.StartAutoLockWatcher(watchCtx, a.config.AutoLock)
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) report(err error) {
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
	}
}

func (a *App) isUnlocked() bool {
	return a.vault.State() == services.StateUnlocked
}

func (a *App) status() string {
	if a.isUnlocked() {
		return "(unlocked)"
	}
	return "(locked)"
}

func (a *App) touch() {
	a.lastActive.Store(a.now().UnixNano())
}

func (a *App) idle() time.Duration {
	return a.now().Sub(time.Unix(0, a.lastActive.Load()))
}

// lockIfIdle forgets the key once the REPL has been idle for timeout.
func (a *App) lockIfIdle(ctx context.Context, timeout time.Duration) bool {
	if !a.isUnlocked() || a.idle() < timeout {
		return false
	}
	a.vault.Lock()
	a.log.Info(ctx, "vault auto-locked", "idle", timeout.String())
	return true
}

// StartAutoLockWatcher locks the vault after timeout without commands.
// It blocks until ctx is done.
func (a *App) StartAutoLockWatcher(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(a.lockTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.lockIfIdle(ctx, timeout) {
				printlnFn("\nVault locked after inactivity. Use 'unlock' to continue.")
			}
		case <-ctx.Done():
			return
		}
	}
}
