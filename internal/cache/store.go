// Package cache persists API responses in a local SQLite database so
// repeated searches do not hit the network or the rate limit.
//
// The store satisfies the http package's Cache interface:
//
//	store, err := cache.Open(filepath.Join(dir, "responses.db"), 24*time.Hour)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	client := http.NewClient(http.WithCache(store))
//
// Entries expire after the configured age; expired rows are purged on
// open and ignored on read.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS responses_fetched_at ON responses (fetched_at);
`

// Store is a SQLite-backed response cache. It is safe for concurrent
// use.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
}

// Open creates or opens the cache database at path. Entries older
// than maxAge are treated as absent; maxAge <= 0 disables expiry.
func Open(path string, maxAge time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite3", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing cache schema: %w", err)
	}

	s := &Store{db: db, maxAge: maxAge}
	if err := s.purgeExpired(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the cached body for a URL, if present and fresh.
func (s *Store) Get(url string) ([]byte, bool) {
	row := s.db.QueryRow(
		`SELECT body, fetched_at FROM responses WHERE url = ?`, url)

	var body []byte
	var fetchedAt int64
	if err := row.Scan(&body, &fetchedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false
		}
		return nil, false
	}
	if s.expired(fetchedAt) {
		return nil, false
	}
	return body, true
}

// Put stores or refreshes the cached body for a URL.
func (s *Store) Put(url string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("caching response for %s: %w", url, err)
	}
	return nil
}

// Len reports how many entries the cache currently holds, expired
// ones included.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n)
	return n, err
}

// Clear removes every cached response.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM responses`)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) expired(fetchedAt int64) bool {
	if s.maxAge <= 0 {
		return false
	}
	return time.Unix(fetchedAt, 0).Add(s.maxAge).Before(time.Now())
}

func (s *Store) purgeExpired() error {
	if s.maxAge <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-s.maxAge).Unix()
	if _, err := s.db.Exec(`DELETE FROM responses WHERE fetched_at < ?`, cutoff); err != nil {
		return fmt.Errorf("purging expired cache entries: %w", err)
	}
	return nil
}
