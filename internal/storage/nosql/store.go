package nosql

import (
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Store is a key/value store partitioned into named collections. Values
// passed to a Scan callback are only valid for the duration of the call.
type Store interface {
	Get(collection, key string) ([]byte, bool, error)
	Scan(collection string, fn func(key string, value []byte) error) error
	Put(collection, key string, value []byte) error
	Close() error
}

// BoltStore keeps each collection in its own bucket.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the bolt file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file '%v': %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Get implements Store.
func (s *BoltStore) Get(collection, key string) (val []byte, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			val, ok = append([]byte(nil), v...), true
		}
		return nil
	})
	return val, ok, err
}

// Scan implements Store. Keys are visited in byte order.
func (s *BoltStore) Scan(collection string, fn func(string, []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if v == nil { // nested bucket
				return nil
			}
			return fn(string(k), v)
		})
	})
}

// Put implements Store.
func (s *BoltStore) Put(collection, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("creating %s bucket: %w", collection, err)
		}
		return b.Put([]byte(key), value)
	})
}

// Close syncs and closes the bolt file.
func (s *BoltStore) Close() error {
	if err := s.db.Sync(); err != nil {
		s.db.Close()
		return fmt.Errorf("syncing db: %w", err)
	}
	return s.db.Close()
}

// LevelStore keeps every collection in one leveldb, keys prefixed with the
// collection name and a NUL separator.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevel opens or creates the leveldb directory at path.
func OpenLevel(path string) (*LevelStore, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("making leveldb dir '%v': %w", path, err)
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb '%v': %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

func prefix(collection string) []byte { return []byte(collection + "\x00") }

// Get implements Store.
func (s *LevelStore) Get(collection, key string) ([]byte, bool, error) {
	v, err := s.db.Get(append(prefix(collection), key...), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Scan implements Store. Keys are visited in byte order.
func (s *LevelStore) Scan(collection string, fn func(string, []byte) error) error {
	p := prefix(collection)
	iter := s.db.NewIterator(util.BytesPrefix(p), nil)
	defer iter.Release()
	for iter.Next() {
		if err := fn(string(iter.Key()[len(p):]), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Put implements Store.
func (s *LevelStore) Put(collection, key string, value []byte) error {
	return s.db.Put(append(prefix(collection), key...), value, nil)
}

// Close implements Store.
func (s *LevelStore) Close() error { return s.db.Close() }
