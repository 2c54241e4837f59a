package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// SaltSize is the length of the per-installation salt.
const SaltSize = 16

const (
	AlgoPBKDF2 = "pbkdf2-sha256"
	AlgoArgon2 = "argon2id"
)

// DefaultPBKDF2Iterations is the work factor for new installations.
const DefaultPBKDF2Iterations = 100000

var (
	ErrUnknownKDF = errors.New("cryptox: unknown key derivation algorithm")
	ErrEmptySalt  = errors.New("cryptox: salt is empty")
)

// KDFParams describes how a key was derived. It is persisted in plaintext
// next to the salt so that unlock re-derives with identical parameters.
type KDFParams struct {
	Algo       string `json:"algo"`
	Iterations int    `json:"iterations,omitempty"`
	Time       uint32 `json:"time,omitempty"`
	Memory     uint32 `json:"memory,omitempty"`
	Threads    uint8  `json:"threads,omitempty"`
}

// PBKDF2Params returns the default parameters: PBKDF2-HMAC-SHA256.
func PBKDF2Params() KDFParams {
	return KDFParams{Algo: AlgoPBKDF2, Iterations: DefaultPBKDF2Iterations}
}

// Argon2Params returns Argon2id parameters (t=1, 64 MiB, 4 lanes).
func Argon2Params() KDFParams {
	return KDFParams{Algo: AlgoArgon2, Time: 1, Memory: 64 * 1024, Threads: 4}
}

// ParamsFor maps an algorithm name to its default parameters.
func ParamsFor(algo string) (KDFParams, error) {
	switch algo {
	case "", AlgoPBKDF2, "pbkdf2":
		return PBKDF2Params(), nil
	case AlgoArgon2, "argon2":
		return Argon2Params(), nil
	default:
		return KDFParams{}, fmt.Errorf("%w: %q", ErrUnknownKDF, algo)
	}
}

// NewSalt draws SaltSize random bytes.
func NewSalt() ([]byte, error) {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey turns password and salt into a Key. The same inputs always
// produce the same key.
func DeriveKey(password, salt []byte, p KDFParams) (Key, error) {
	if len(salt) == 0 {
		return Key{}, ErrEmptySalt
	}

	var raw []byte
	switch p.Algo {
	case AlgoPBKDF2:
		if p.Iterations <= 0 {
			return Key{}, fmt.Errorf("cryptox: invalid pbkdf2 iteration count %d", p.Iterations)
		}
		raw = pbkdf2.Key(password, salt, p.Iterations, KeySize, sha256.New)
	case AlgoArgon2:
		if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
			return Key{}, fmt.Errorf("cryptox: invalid argon2 parameters %+v", p)
		}
		raw = argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, KeySize)
	default:
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKDF, p.Algo)
	}
	defer common.WipeByteArray(raw)

	return NewKey(raw)
}
