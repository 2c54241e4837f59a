// Package services contains the application services of the jobkeeper
// client. This file holds the vault lifecycle: first-run setup, unlock,
// password change, lock and reset.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
)

// VaultState is the position of the vault in its unlock lifecycle.
type VaultState int

const (
	StateUninitialized VaultState = iota
	StateCheckingSetup
	StateNeedsSetup
	StateNeedsUnlock
	StateUnlocked
	StateLockedError
)

func (s VaultState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCheckingSetup:
		return "checking-setup"
	case StateNeedsSetup:
		return "needs-setup"
	case StateNeedsUnlock:
		return "needs-unlock"
	case StateUnlocked:
		return "unlocked"
	case StateLockedError:
		return "locked-error"
	default:
		return fmt.Sprintf("VaultState(%d)", int(s))
	}
}

// VaultService drives setup and unlock of the local vault.
//
// Contract:
//   - Check: decide between first run (NeedsSetup) and returning user
//     (NeedsUnlock) by looking for a stored salt.
//   - Setup: first run only; generate a salt, derive the key, persist the
//     salt and KDF parameters, install the key.
//   - Unlock: derive the key from the stored salt and verify it by reading
//     stored data. A wrong password fails with cryptox.ErrDecryption and
//     moves the vault to LockedError.
//   - ChangePassword: re-encrypt everything under a key from a new salt.
//   - Reset: erase everything after two confirmations.
//   - Lock: forget the key.
//
// Passwords are not retained; callers should wipe them afterwards.
type VaultService interface {
	State() VaultState
	Check(ctx context.Context) (VaultState, error)
	Setup(ctx context.Context, password []byte) error
	Unlock(ctx context.Context, password []byte) error
	ChangePassword(ctx context.Context, newPassword, confirm []byte) error
	Reset(ctx context.Context, confirmFirst, confirmSecond bool) error
	Lock()
}

type vaultService struct {
	mu    sync.Mutex
	state VaultState
	store *store.Store
	kdf   cryptox.KDFParams
	log   logging.Logger
}

// NewVaultService returns a service in the Uninitialized state. kdf is used
// for new salts (setup and password change); unlock always uses the stored
// parameters.
func NewVaultService(st *store.Store, kdf cryptox.KDFParams, log logging.Logger) VaultService {
	if log == nil {
		log = logging.Nop()
	}
	return &vaultService{
		store: st,
		kdf:   kdf,
		log:   log.With("component", "vault"),
	}
}

func (v *vaultService) State() VaultState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *vaultService) expect(allowed ...VaultState) error {
	for _, s := range allowed {
		if v.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, v.state)
}

func (v *vaultService) Check(ctx context.Context) (VaultState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.expect(StateUninitialized); err != nil {
		return v.state, err
	}
	v.state = StateCheckingSetup

	salt, err := v.store.GetSalt(ctx)
	if err != nil {
		v.state = StateUninitialized
		return v.state, fmt.Errorf("check setup: %w", err)
	}

	if len(salt) == 0 {
		v.state = StateNeedsSetup
	} else {
		v.state = StateNeedsUnlock
	}
	v.log.Debug(ctx, "setup checked", "state", v.state.String())
	return v.state, nil
}

func (v *vaultService) Setup(ctx context.Context, password []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.expect(StateNeedsSetup); err != nil {
		return err
	}
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return err
	}
	key, err := cryptox.DeriveKey(password, salt, v.kdf)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer key.Wipe()

	if err := v.store.SetCredentials(ctx, salt, v.kdf, key); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	v.store.Keys().Set(key)
	v.state = StateUnlocked
	v.log.Info(ctx, "vault created", "kdf", v.kdf.Algo)
	return nil
}

func (v *vaultService) Unlock(ctx context.Context, password []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.expect(StateNeedsUnlock, StateLockedError); err != nil {
		return err
	}
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	salt, err := v.store.GetSalt(ctx)
	if err != nil {
		return fmt.Errorf("load salt: %w", err)
	}
	if len(salt) == 0 {
		return ErrSaltMissing
	}
	params, err := v.store.GetKDF(ctx)
	if err != nil {
		return err
	}

	key, err := cryptox.DeriveKey(password, salt, params)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer key.Wipe()

	legacy := false
	if err := v.store.VerifyKey(ctx, key); err != nil {
		if !errors.Is(err, store.ErrNoVerifier) {
			return v.failUnlock(ctx, err)
		}
		legacy = true
	}

	// Without a verifier only a sealed record can vouch for the key.
	opened := false
	if legacy {
		if opened, err = v.store.OpenFirstSealed(ctx, key); err != nil {
			return v.failUnlock(ctx, err)
		}
	}

	keys := v.store.Keys()
	keys.Set(key)
	if err := v.checkKey(ctx); err != nil {
		keys.Clear()
		return v.failUnlock(ctx, err)
	}

	if opened {
		if err := v.store.SetVerifier(ctx, key); err != nil {
			v.log.Warn(ctx, "could not store key verifier", "error", err)
		}
	}

	v.state = StateUnlocked
	v.log.Info(ctx, "vault unlocked")
	return nil
}

// checkKey reads the first non-empty collection; a wrong key fails there.
func (v *vaultService) checkKey(ctx context.Context) error {
	for _, c := range store.EncryptedCollections {
		recs, err := v.store.Load(ctx, c)
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			return nil
		}
	}
	return nil
}

func (v *vaultService) failUnlock(ctx context.Context, err error) error {
	if errors.Is(err, cryptox.ErrDecryption) {
		v.state = StateLockedError
		v.log.Warn(ctx, "unlock failed: incorrect password or corrupted data")
	}
	return err
}

func (v *vaultService) ChangePassword(ctx context.Context, newPassword, confirm []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.expect(StateUnlocked); err != nil {
		return err
	}
	if string(newPassword) != string(confirm) {
		return ErrPasswordMismatch
	}
	if len(newPassword) == 0 {
		return ErrEmptyPassword
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return err
	}
	key, err := cryptox.DeriveKey(newPassword, salt, v.kdf)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer key.Wipe()

	if err := v.store.Rekey(ctx, key, salt, v.kdf); err != nil {
		return err
	}
	v.log.Info(ctx, "password changed")
	return nil
}

func (v *vaultService) Reset(ctx context.Context, confirmFirst, confirmSecond bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !confirmFirst || !confirmSecond {
		return ErrResetNotConfirmed
	}
	if err := v.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	v.state = StateUninitialized
	return nil
}

func (v *vaultService) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.store.Keys().Clear()
	if v.state == StateUnlocked {
		v.state = StateNeedsUnlock
	}
}
