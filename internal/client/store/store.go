// Package store is the entity store of the vault: named collections whose
// records are sealed with the session key before they reach SQLite and
// opened after they are read back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/jobkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/jobkeeper/internal/client/session"
	"github.com/dmitrijs2005/jobkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jobkeeper/internal/dbx"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
)

const (
	CollectionApplications  = "applications"
	CollectionResumes       = "resumes"
	CollectionItems         = "items"
	CollectionPrepQuestions = "prepQuestions"
	// CollectionMetadata is kept in its own table and never encrypted.
	CollectionMetadata = "metadata"
)

// EncryptedCollections lists the collections whose records are sealed.
var EncryptedCollections = []string{
	CollectionApplications,
	CollectionResumes,
	CollectionItems,
	CollectionPrepQuestions,
}

var (
	// ErrRekeyFailed reports that re-encryption under a new key did not
	// complete. Nothing was written and the previous key stays current.
	ErrRekeyFailed = errors.New("store: re-key failed")

	ErrUnknownCollection = errors.New("store: unknown collection")
	ErrEmptyID           = errors.New("store: entity has empty id")
	ErrNoVerifier        = errors.New("store: no key verifier stored")
)

var errKeyNotSet = session.ErrKeyNotSet

// Entity is anything the store can persist.
type Entity interface {
	RecordID() string
}

type Store struct {
	db      *sql.DB
	keys    *session.KeyRing
	records records.Repository
	meta    metadata.Repository
	log     logging.Logger
	now     func() time.Time
}

func New(db *sql.DB, keys *session.KeyRing, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		db:      db,
		keys:    keys,
		records: records.NewSQLiteRepository(db),
		meta:    metadata.NewSQLiteRepository(db),
		log:     log.With("component", "store"),
		now:     time.Now,
	}
}

// Keys returns the key ring the store seals with.
func (s *Store) Keys() *session.KeyRing { return s.keys }

func checkCollection(collection string) error {
	if !slices.Contains(EncryptedCollections, collection) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

// Records returns the raw stored form of a collection.
func (s *Store) Records(ctx context.Context, collection string) ([]StoredRecord, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.records.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]StoredRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Load returns the plaintext JSON of every record in collection. An empty
// collection needs no key; sealed records without a key fail with
// session.ErrKeyNotSet, and records that do not open fail with
// cryptox.ErrDecryption.
func (s *Store) Load(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	err := s.keys.View(func(key cryptox.Key, ok bool) error {
		recs, err := s.Records(ctx, collection)
		if err != nil {
			return err
		}
		out = make([]json.RawMessage, 0, len(recs))
		for _, rec := range recs {
			b, err := plaintext(rec, key, ok)
			if err != nil {
				return fmt.Errorf("load %s: %w", collection, err)
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "collection loaded", "collection", collection, "count", len(out))
	return out, nil
}

// GetAll loads a collection and decodes every record into T.
func GetAll[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	raws, err := s.Load(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Save seals e with the session key and upserts it by e.RecordID(). A
// legacy plain row with the same id is replaced by the sealed form.
func (s *Store) Save(ctx context.Context, collection string, e Entity) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	id := e.RecordID()
	if id == "" {
		return ErrEmptyID
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	return s.keys.Use(func(key cryptox.Key) error {
		env, err := cryptox.SealBytes(data, key)
		if err != nil {
			return err
		}
		row := sealedRow(collection, id, env, s.now().UTC())
		if err := s.records.Upsert(ctx, &row); err != nil {
			return err
		}
		s.log.Debug(ctx, "record saved", "collection", collection)
		return nil
	})
}

// Delete removes a record. Deleting an absent id succeeds. It waits for a
// running Rekey, which would otherwise write the record back.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return s.keys.View(func(cryptox.Key, bool) error {
		return s.records.Delete(ctx, collection, id)
	})
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	return s.records.Count(ctx, collection)
}

// Collections returns the encrypted collections that currently hold records.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	return s.records.Collections(ctx)
}

// GetSalt returns nil when no salt has been stored yet.
func (s *Store) GetSalt(ctx context.Context) ([]byte, error) {
	return s.meta.Get(ctx, metadata.KeySalt)
}

func (s *Store) SetSalt(ctx context.Context, salt []byte) error {
	if len(salt) == 0 {
		return cryptox.ErrEmptySalt
	}
	return s.meta.Set(ctx, metadata.KeySalt, salt)
}

// GetKDF returns the stored derivation parameters, or the PBKDF2 defaults
// when none were recorded.
func (s *Store) GetKDF(ctx context.Context) (cryptox.KDFParams, error) {
	raw, err := s.meta.Get(ctx, metadata.KeyKDF)
	if err != nil {
		return cryptox.KDFParams{}, err
	}
	if len(raw) == 0 {
		return cryptox.PBKDF2Params(), nil
	}
	var p cryptox.KDFParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return cryptox.KDFParams{}, fmt.Errorf("decode kdf params: %w", err)
	}
	return p, nil
}

func (s *Store) SetKDF(ctx context.Context, p cryptox.KDFParams) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode kdf params: %w", err)
	}
	return s.meta.Set(ctx, metadata.KeyKDF, raw)
}

// SetCredentials stores salt, parameters and a verifier sealed with key,
// all in one transaction.
func (s *Store) SetCredentials(ctx context.Context, salt []byte, p cryptox.KDFParams, key cryptox.Key) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return writeCredentials(ctx, metadata.NewSQLiteRepository(tx), salt, p, key)
	})
}

func writeCredentials(ctx context.Context, meta metadata.Repository, salt []byte, p cryptox.KDFParams, key cryptox.Key) error {
	if len(salt) == 0 {
		return cryptox.ErrEmptySalt
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode kdf params: %w", err)
	}
	verifier, err := sealVerifier(key)
	if err != nil {
		return err
	}
	if err := meta.Set(ctx, metadata.KeySalt, salt); err != nil {
		return err
	}
	if err := meta.Set(ctx, metadata.KeyKDF, raw); err != nil {
		return err
	}
	return meta.Set(ctx, metadata.KeyVerifier, verifier)
}

// verifierPayload is sealed under the session key so a candidate key can be
// checked even when no records exist yet.
var verifierPayload = []byte(`{"vault":"jobkeeper"}`)

func sealVerifier(key cryptox.Key) ([]byte, error) {
	env, err := cryptox.SealBytes(verifierPayload, key)
	if err != nil {
		return nil, fmt.Errorf("seal verifier: %w", err)
	}
	return json.Marshal(env)
}

// SetVerifier stores a verifier sealed with key. Installations created
// before verifiers existed get one on their first successful unlock.
func (s *Store) SetVerifier(ctx context.Context, key cryptox.Key) error {
	v, err := sealVerifier(key)
	if err != nil {
		return err
	}
	return s.meta.Set(ctx, metadata.KeyVerifier, v)
}

// VerifyKey checks key against the stored verifier. It returns
// ErrNoVerifier when none is stored and an error matching
// cryptox.ErrDecryption when the key does not open it.
func (s *Store) VerifyKey(ctx context.Context, key cryptox.Key) error {
	raw, err := s.meta.Get(ctx, metadata.KeyVerifier)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrNoVerifier
	}
	var env cryptox.Sealed
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: malformed verifier", cryptox.ErrDecryption)
	}
	if _, err := cryptox.OpenBytes(env, key); err != nil {
		return fmt.Errorf("verifier: %w", err)
	}
	return nil
}

// OpenFirstSealed opens the first sealed record of the encrypted collections
// with key. Plain rows are skipped since they prove nothing about the key.
// found is false when no sealed record exists; a key that does not open
// the record fails with an error matching cryptox.ErrDecryption.
func (s *Store) OpenFirstSealed(ctx context.Context, key cryptox.Key) (found bool, err error) {
	for _, c := range EncryptedCollections {
		recs, err := s.Records(ctx, c)
		if err != nil {
			return false, err
		}
		for _, rec := range recs {
			if _, ok := rec.(Sealed); !ok {
				continue
			}
			if _, err := plaintext(rec, key, true); err != nil {
				return true, fmt.Errorf("open %s: %w", c, err)
			}
			return true, nil
		}
	}
	return false, nil
}

// ClearAll erases every record and all metadata, then forgets the session
// key. There is no way back.
func (s *Store) ClearAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return err
	}
	s.keys.Clear()
	s.log.Warn(ctx, "all local data erased")
	return nil
}
