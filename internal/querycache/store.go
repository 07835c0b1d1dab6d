package querycache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Cache keys for the listings the CLI caches between runs. Mutations
// invalidate the keys their kind affects.
const (
	KeyMySubmissions   = "my-submissions"
	KeyAllSubmissions  = "all-submissions"
	KeyPodcastShows    = "podcast-shows"
	KeyPodcastEpisodes = "podcast-episodes"
	KeyBlogPosts       = "blog-posts"
	KeyArtistProfile   = "artist-profile"
)

// Store persists query results in SQLite so repeated listings skip the
// network until a mutation invalidates them. A zero-value Store (or one
// opened with an empty path) is a no-op: every Get misses and writes are
// dropped.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the cache database at path. An empty path
// returns a disabled store. The database is guarded by a sibling lock file so
// concurrent CLI invocations serialize their access.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return &Store{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		// Another invocation holds the cache; run without it rather than block.
		return &Store{}, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS query_results (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	cached_at TEXT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

// Enabled reports whether the store is backed by a database.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Put stores value under key, replacing any previous result.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	if !s.Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO query_results (key, payload, cached_at) VALUES (?, ?, ?)`,
		key, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store cache entry %s: %w", key, err)
	}
	return nil
}

// Get loads the cached result for key into out, reporting whether a cached
// value existed.
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM query_results WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load cache entry %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// Invalidate removes the named keys. Unknown keys are ignored.
func (s *Store) Invalidate(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM query_results WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("invalidate cache keys: %w", err)
	}
	return nil
}

// Clear drops every cached result.
func (s *Store) Clear(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM query_results`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Close releases the database and the cross-process lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
		s.lock = nil
	}
	return err
}
