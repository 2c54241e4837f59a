package cli

import (
	"errors"

	"github.com/dmitrijs2005/jobkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
	"github.com/dmitrijs2005/jobkeeper/internal/client/session"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
)

const (
	msgWrongPassword = "Incorrect password or data corruption."
	msgLocked        = "Vault is locked. Use 'unlock' first."
)

// userMessage turns a service error into the line shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, cryptox.ErrDecryption):
		return msgWrongPassword
	case errors.Is(err, session.ErrKeyNotSet):
		return msgLocked
	case errors.Is(err, services.ErrResetNotConfirmed):
		return "Reset cancelled."
	case errors.Is(err, store.ErrRekeyFailed):
		return "Password change failed, data is still encrypted with the old password: " + err.Error()
	case errors.Is(err, localdb.ErrInitialization):
		return "Could not open the local database: " + err.Error()
	case errors.Is(err, services.ErrInvalidState):
		return "Not possible right now: " + err.Error()
	default:
		return "Failed: " + err.Error()
	}
}
