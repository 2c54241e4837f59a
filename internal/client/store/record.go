package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
)

// StoredRecord is what one records row holds: either Plain or Sealed.
type StoredRecord interface {
	RecordID() string
	storedRecord()
}

// Plain is a legacy row written before encryption was introduced. Its Data
// is the entity JSON.
type Plain struct {
	ID   string
	Data json.RawMessage
}

// Sealed is an envelope produced by cryptox.Seal.
type Sealed struct {
	ID       string
	Envelope cryptox.Sealed
}

func (p Plain) RecordID() string  { return p.ID }
func (s Sealed) RecordID() string { return s.ID }

func (Plain) storedRecord()  {}
func (Sealed) storedRecord() {}

func fromRow(row models.Record) (StoredRecord, error) {
	switch row.Kind {
	case models.RecordPlain:
		return Plain{ID: row.ID, Data: json.RawMessage(row.Data)}, nil
	case models.RecordSealed:
		return Sealed{ID: row.ID, Envelope: cryptox.Sealed{Nonce: row.Nonce, Ciphertext: row.Ciphertext}}, nil
	default:
		return nil, fmt.Errorf("record %s/%s: unknown kind %q", row.Collection, row.ID, row.Kind)
	}
}

func sealedRow(collection, id string, env cryptox.Sealed, now time.Time) models.Record {
	return models.Record{
		Collection: collection,
		ID:         id,
		Kind:       models.RecordSealed,
		Nonce:      env.Nonce,
		Ciphertext: env.Ciphertext,
		UpdatedAt:  now,
	}
}

// plaintext returns the JSON held by rec. Sealed records need the key;
// ok reports whether one is available.
func plaintext(rec StoredRecord, key cryptox.Key, ok bool) (json.RawMessage, error) {
	switch r := rec.(type) {
	case Plain:
		return r.Data, nil
	case Sealed:
		if !ok {
			return nil, errKeyNotSet
		}
		b, err := cryptox.OpenBytes(r.Envelope, key)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}
