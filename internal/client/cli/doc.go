// Package cli provides the interactive jobkeeper command-line client.
//
// It wires configuration, the encrypted local store and the application
// services behind a small REPL. Typical flow: check whether a vault exists,
// prompt for setup or unlock, start the idle auto-lock watcher, then execute
// user commands until exit.
//
// Commands:
//   - setup / unlock / lock / passwd / reset
//   - app, journal: applications and interview notes
//   - resume, prep, toolbox: reusable material
//   - export / import / import-csv: plaintext backups and spreadsheets
//   - stats
//
// See App, StartAutoLockWatcher and runREPL for details.
package cli
