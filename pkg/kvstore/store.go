// Package kvstore persists ECS components to a bbolt-backed key-value
// store, cbor-encoded, so a world can survive a process restart: an
// EntityStore implements ecs.Loader to restore previously-saved state onto
// a freshly-added component, and ecs.Unloader to persist a component's
// final value before it is evicted from memory.
package kvstore

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/RazeLighter777/melon/pkg/ecs"
	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var componentsBucket = []byte("components")

type decodeFunc func(payload []byte) (any, error)

// EntityStore is a bbolt-backed component store keyed by (entity, type).
type EntityStore struct {
	db      *bolt.DB
	decoder map[ecs.ComponentTypeID]decodeFunc
	logger  *logrus.Entry
}

// Open opens (creating if necessary) a bbolt database at path and prepares
// its component bucket.
func Open(path string) (*EntityStore, error) {
	return OpenWithLogger(path, nil)
}

// OpenWithLogger is Open with a logger, following this module's nil-safe
// *logrus.Entry convention.
func OpenWithLogger(path string, logger *logrus.Logger) (*EntityStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("kvstore: opening %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(componentsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: preparing bucket: %w", err)
	}

	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithFields(logrus.Fields{"component": "kvstore", "path": path})
	}
	return &EntityStore{db: db, decoder: make(map[ecs.ComponentTypeID]decodeFunc), logger: entry}, nil
}

// Close releases the underlying database handle.
func (s *EntityStore) Close() error {
	return s.db.Close()
}

// Register teaches the store how to decode persisted component type T, so
// Load can reconstruct it without knowing T at the call site.
func Register[T any](s *EntityStore) {
	var zero T
	tid := ecs.TypeID[T]()
	s.decoder[tid] = func(payload []byte) (any, error) {
		var v T
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("kvstore: decoding %s: %w", reflect.TypeOf(zero).String(), err)
		}
		return v, nil
	}
}

func componentKey(entity ecs.EntityID, tid ecs.ComponentTypeID) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[0:8], uint64(entity))
	binary.BigEndian.PutUint64(key[8:16], uint64(tid))
	return key
}

// Load implements ecs.Loader: if a persisted value exists for c's (entity,
// type), it is decoded and returned in c's place; otherwise c is persisted
// as the initial value and returned unchanged.
func (s *EntityStore) Load(c ecs.UntypedComponent) ecs.UntypedComponent {
	entity, tid := c.Entity(), c.Type()
	key := componentKey(entity, tid)

	var payload []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(componentsBucket).Get(key); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	})

	if payload == nil {
		s.persist(entity, tid, c)
		return c
	}

	decode, ok := s.decoder[tid]
	if !ok {
		if s.logger != nil {
			s.logger.WithField("type", tid).Warn("no decoder registered, using in-memory value")
		}
		return c
	}
	value, err := decode(payload)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("failed to decode persisted component, using in-memory value")
		}
		return c
	}
	return ecs.NewUntypedComponent(entity, tid, value)
}

// Unload implements ecs.Unloader: persists c's current value so it can be
// restored by a later Load.
func (s *EntityStore) Unload(c ecs.UntypedComponent) {
	s.persist(c.Entity(), c.Type(), c)
}

func (s *EntityStore) persist(entity ecs.EntityID, tid ecs.ComponentTypeID, c ecs.UntypedComponent) {
	payload, err := cbor.Marshal(ecs.Payload(c))
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("failed to encode component for persistence")
		}
		return
	}
	key := componentKey(entity, tid)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(componentsBucket).Put(key, payload)
	}); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("failed to persist component")
	}
}
