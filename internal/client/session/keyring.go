// Package session holds the key of the currently unlocked vault.
//
// The key lives only in process memory. Nothing in this package persists or
// serializes it; a new process always starts locked.
package session

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
)

// ErrKeyNotSet is returned when an operation needs the session key before
// the vault was set up or unlocked.
var ErrKeyNotSet = errors.New("session: key not set")

// KeyRing is a single mutable key slot shared by the store and the unlock
// protocol. Readers (Use, View) may run concurrently; Swap excludes them, so
// a rotation is atomic with respect to in-flight store operations.
type KeyRing struct {
	mu  sync.RWMutex
	key cryptox.Key
}

func NewKeyRing() *KeyRing {
	return &KeyRing{}
}

// Set installs a copy of key, wiping the previous one.
func (r *KeyRing) Set(key cryptox.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := key.Clone()
	r.key.Wipe()
	r.key = next
}

// Get returns a copy of the current key.
func (r *KeyRing) Get() (cryptox.Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.key.IsZero() {
		return cryptox.Key{}, false
	}
	return r.key.Clone(), true
}

// IsSet reports whether a key is installed.
func (r *KeyRing) IsSet() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.key.IsZero()
}

// Clear wipes and drops the key.
func (r *KeyRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key.Wipe()
	r.key = cryptox.Key{}
}

// View runs fn under the read lock with the current key, which may be unset.
// fn must not call back into the KeyRing.
func (r *KeyRing) View(fn func(key cryptox.Key, ok bool) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(r.key, !r.key.IsZero())
}

// Use is View for callers that cannot proceed without a key.
func (r *KeyRing) Use(fn func(key cryptox.Key) error) error {
	return r.View(func(key cryptox.Key, ok bool) error {
		if !ok {
			return ErrKeyNotSet
		}
		return fn(key)
	})
}

// Swap runs fn under the write lock. The key returned by fn replaces the
// current one only when fn succeeds; on error the current key stays.
func (r *KeyRing) Swap(fn func(current cryptox.Key) (cryptox.Key, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.key.IsZero() {
		return ErrKeyNotSet
	}

	next, err := fn(r.key)
	if err != nil {
		return err
	}
	next = next.Clone()
	r.key.Wipe()
	r.key = next
	return nil
}
