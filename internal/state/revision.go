// Package state persists the single piece of data carried across runs: the
// template revision last seen by a completed update pass.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNoRevision indicates the store holds no revision yet (first run).
var ErrNoRevision = errors.New("no revision stored")

var (
	bucketSync  = []byte("sync")
	keyRevision = []byte("last_seen_revision")
)

// RevisionStore durably stores the last-seen template revision in a bolt
// database. One bucket, one key; opened by a single writer per run.
type RevisionStore struct {
	db *bolt.DB
}

// Open opens the store at the given path, creating the file and its
// directory if they do not exist.
func Open(path string) (*RevisionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database %s: %w", path, err)
	}
	return &RevisionStore{db: db}, nil
}

// Close releases the database file.
func (s *RevisionStore) Close() error {
	return s.db.Close()
}

// Has reports whether a revision has been stored.
func (s *RevisionStore) Has() (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSync)
		found = b != nil && b.Get(keyRevision) != nil
		return nil
	})
	return found, err
}

// Get returns the stored revision, or ErrNoRevision if none exists.
func (s *RevisionStore) Get() (int, error) {
	var rev int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSync)
		if b == nil {
			return ErrNoRevision
		}
		data := b.Get(keyRevision)
		if data == nil {
			return ErrNoRevision
		}
		parsed, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("corrupt revision value %q: %w", data, err)
		}
		rev = parsed
		return nil
	})
	return rev, err
}

// Set overwrites the stored revision.
func (s *RevisionStore) Set(revision int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSync)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return b.Put(keyRevision, []byte(strconv.Itoa(revision)))
	})
}

// Insert stores the revision for the first time. Writing through Insert
// rather than Set marks the bootstrap path in the caller; the storage
// semantics are the same.
func (s *RevisionStore) Insert(revision int) error {
	return s.Set(revision)
}
