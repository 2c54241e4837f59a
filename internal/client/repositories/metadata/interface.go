// Package metadata stores vault-level key/value settings such as the KDF salt.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeySalt     = "salt"
	KeyKDF      = "kdf"
	KeyVerifier = "verifier"
)

// Repository reads and writes metadata values. Get returns (nil, nil) when
// the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
