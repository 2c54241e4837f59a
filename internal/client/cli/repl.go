package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// handler is the shape of every REPL command.
type handler func(ctx context.Context, args []string) error

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	touch()

	Setup(ctx context.Context, args []string) error
	Unlock(ctx context.Context, args []string) error
	Lock(ctx context.Context, args []string) error
	ChangePassword(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error

	Applications(ctx context.Context, args []string) error
	Journal(ctx context.Context, args []string) error
	Resumes(ctx context.Context, args []string) error
	Prep(ctx context.Context, args []string) error
	Toolbox(ctx context.Context, args []string) error

	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	ImportCSV(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
}

const (
	helpLocked   = "Available commands: setup, unlock, reset, exit"
	helpUnlocked = "Available commands: app, journal, resume, prep, toolbox, stats, export, import, import-csv, passwd, lock, reset, exit\n" +
		"Type a command without arguments to see its subcommands."
)

// runREPL starts a simple read–eval–print loop for the jobkeeper CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches the remaining tokens to the matching method on 'a'. Commands
// that touch records are refused while the vault is locked. Errors returned
// by handlers are reported through userMessage. The loop exits on EOF or
// when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("jk %s > ", statusFn()))
		line, readErr := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}
		a.touch()
		cmd, args := parts[0], parts[1:]

		var run handler
		needsKey := true

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn(helpUnlocked)
			} else {
				printlnFn(helpLocked)
			}
			continue

		case "setup":
			run, needsKey = a.Setup, false
		case "unlock":
			run, needsKey = a.Unlock, false
		case "lock":
			run, needsKey = a.Lock, false
		case "reset":
			run, needsKey = a.Reset, false
		case "passwd":
			run = a.ChangePassword

		case "app", "apps":
			run = a.Applications
		case "journal":
			run = a.Journal
		case "resume", "resumes":
			run = a.Resumes
		case "prep":
			run = a.Prep
		case "toolbox":
			run = a.Toolbox

		case "export":
			run = a.Export
		case "import":
			run = a.Import
		case "import-csv":
			run = a.ImportCSV
		case "stats":
			run = a.Stats

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if needsKey && !a.isUnlocked() {
			printlnFn(msgLocked)
		} else if err := run(ctx, args); err != nil {
			printlnFn(userMessage(err))
		}

		if readErr != nil {
			return
		}
	}
}
