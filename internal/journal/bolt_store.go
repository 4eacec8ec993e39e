package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const callsBucket = "calls"

// boltStore implements a Store backed by BoltDB. Keys are UUIDv7 strings, so
// cursor order is recording order.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(callsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores e, assigning its id and timestamps.
func (b *boltStore) Record(e Entry) (Entry, error) {
	if b == nil || b.db == nil {
		return e, nil
	}

	now := b.now().UTC()
	if err := b.maybeCleanupExpired(now); err != nil {
		return e, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return e, fmt.Errorf("generate entry id: %w", err)
	}
	e.ID = id.String()
	e.RecordedAt = now
	e.ExpiresAt = now.Add(b.entryTTL)

	raw, err := json.Marshal(e)
	if err != nil {
		return e, fmt.Errorf("encode entry: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(callsBucket))
		if bucket == nil {
			return fmt.Errorf("calls bucket missing")
		}
		return bucket.Put([]byte(e.ID), raw)
	})
	return e, err
}

// Recent returns up to limit unexpired entries, newest first.
func (b *boltStore) Recent(limit int) ([]Entry, error) {
	if b == nil || b.db == nil || limit <= 0 {
		return nil, nil
	}

	now := b.now()
	out := make([]Entry, 0, limit)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(callsBucket))
		if bucket == nil {
			return fmt.Errorf("calls bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < limit; k, v = cursor.Prev() {
			e, ok := decodeEntry(v)
			if !ok || !e.ExpiresAt.After(now) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(callsBucket))
		if bucket == nil {
			return fmt.Errorf("calls bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			e, ok := decodeEntry(v)
			if !ok || !e.ExpiresAt.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeEntry decodes a stored entry, rejecting values without an expiry.
func decodeEntry(value []byte) (Entry, bool) {
	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return Entry{}, false
	}
	if e.ExpiresAt.IsZero() {
		return Entry{}, false
	}
	return e, true
}
