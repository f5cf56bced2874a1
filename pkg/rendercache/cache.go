// Package rendercache is a collaborator around the core: a bbolt-backed
// cache of rendered HTML keyed by a content hash of (source, options).
// The core itself stays a pure function of its inputs; callers that
// render the same documents repeatedly front it with this cache.
package rendercache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketHTML = []byte("html")

// Cache is a persistent render cache. It is safe for concurrent use.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if needed) a cache database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("rendercache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHTML)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("rendercache: init %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for a source and an options fingerprint.
// Options must be folded into the fingerprint by the caller; two renders
// with different options never share a key.
func Key(source []byte, optsFingerprint string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(optsFingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached HTML for key, if present.
func (c *Cache) Get(key string) (string, bool, error) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHTML).Get([]byte(key))
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("rendercache: get: %w", err)
	}
	return string(out), out != nil, nil
}

// Put stores HTML under key.
func (c *Cache) Put(key, html string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHTML).Put([]byte(key), []byte(html))
	})
	if err != nil {
		return fmt.Errorf("rendercache: put: %w", err)
	}
	return nil
}

// Purge drops every cached entry.
func (c *Cache) Purge() error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketHTML); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketHTML)
		return err
	})
	if err != nil {
		return fmt.Errorf("rendercache: purge: %w", err)
	}
	return nil
}
