// Package models defines the jobkeeper entities and the row shape used by
// the local database.
package models

import "time"

// RecordKind tells how a records row stores its payload.
type RecordKind string

const (
	// RecordSealed rows carry an AES-GCM envelope in Nonce/Ciphertext.
	RecordSealed RecordKind = "sealed"
	// RecordPlain rows were written before encryption existed; Data holds
	// the entity JSON as is.
	RecordPlain RecordKind = "plain"
)

// Record is one row of the records table.
type Record struct {
	// Collection is the logical collection (applications, resumes, ...).
	Collection string

	// ID is the entity identity, or the item type for toolbox groups.
	ID string

	Kind RecordKind

	// Data is the plaintext JSON of a legacy row.
	Data []byte

	// Nonce and Ciphertext form the envelope of a sealed row.
	Nonce      []byte
	Ciphertext []byte

	// UpdatedAt is the last write time in UTC.
	UpdatedAt time.Time
}
