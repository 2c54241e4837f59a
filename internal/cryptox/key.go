// Package cryptox implements the password-based key derivation and the
// envelope encryption used for every record in the local vault.
package cryptox

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

// KeySize is the length of a derived key: AES-256.
const KeySize = 32

var errKeyNotSerializable = errors.New("cryptox: key material is not serializable")

// Key is a symmetric AES-256 key. The bytes are unexported and every
// formatting path (fmt, slog, encoding/json) is redacted.
type Key struct {
	b []byte
}

// NewKey copies raw into a Key. raw must be KeySize bytes long.
func NewKey(raw []byte) (Key, error) {
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf("cryptox: key must be %d bytes, got %d", KeySize, len(raw))
	}
	b := make([]byte, KeySize)
	copy(b, raw)
	return Key{b: b}, nil
}

// IsZero reports whether k holds no key material.
func (k Key) IsZero() bool {
	return len(k.b) == 0
}

// Equal compares two keys in constant time.
func (k Key) Equal(other Key) bool {
	return len(k.b) == len(other.b) && subtle.ConstantTimeCompare(k.b, other.b) == 1
}

// Clone returns an independent copy, so wiping one does not affect the other.
func (k Key) Clone() Key {
	if k.IsZero() {
		return Key{}
	}
	b := make([]byte, len(k.b))
	copy(b, k.b)
	return Key{b: b}
}

// Wipe zeroes the key material in place.
func (k Key) Wipe() {
	common.WipeByteArray(k.b)
}

func (k Key) String() string { return "cryptox.Key(redacted)" }

func (k Key) GoString() string { return k.String() }

func (k Key) LogValue() slog.Value { return slog.StringValue(k.String()) }

func (k Key) MarshalJSON() ([]byte, error) { return nil, errKeyNotSerializable }

func (k Key) MarshalText() ([]byte, error) { return nil, errKeyNotSerializable }
