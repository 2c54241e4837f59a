package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
)

// NonceSize is the AES-GCM nonce length.
const NonceSize = 12

// ErrDecryption is returned when an envelope cannot be opened: wrong key,
// tampered or truncated ciphertext, or a malformed payload. The causes are
// deliberately indistinguishable.
var ErrDecryption = errors.New("cryptox: decryption failed")

// Sealed is the encrypted form of one record.
type Sealed struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func newGCM(key Key) (cipher.AEAD, error) {
	if key.IsZero() {
		return nil, errors.New("cryptox: empty key")
	}
	block, err := aes.NewCipher(key.b)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal serializes v to JSON and encrypts it with AES-256-GCM under a fresh
// random nonce.
//
//	sealed, err := cryptox.Seal(app, key)
//	...
//	var back models.Application
//	err = cryptox.Open(sealed, key, &back)
func Seal(v any, key Key) (Sealed, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return Sealed{}, fmt.Errorf("cryptox: marshal: %w", err)
	}
	return SealBytes(plaintext, key)
}

// SealBytes encrypts an already serialized JSON document.
func SealBytes(plaintext []byte, key Key) (Sealed, error) {
	aead, err := newGCM(key)
	if err != nil {
		return Sealed{}, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Sealed{}, fmt.Errorf("cryptox: nonce: %w", err)
	}

	return Sealed{Nonce: nonce, Ciphertext: aead.Seal(nil, nonce, plaintext, nil)}, nil
}

// OpenBytes authenticates and decrypts s, returning the JSON plaintext.
func OpenBytes(s Sealed, key Key) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(s.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", ErrDecryption, len(s.Nonce))
	}

	plaintext, err := aead.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	if !json.Valid(plaintext) {
		return nil, fmt.Errorf("%w: plaintext is not JSON", ErrDecryption)
	}
	return plaintext, nil
}

// Open decrypts s and unmarshals the plaintext into v.
func Open(s Sealed, key Key, v any) error {
	plaintext, err := OpenBytes(s, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return nil
}
