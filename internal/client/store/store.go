// Package store implements the local cache: a SQLite-backed key-value table
// holding JSON-serialized values, with in-process change notifications and
// an intake for changes made by other processes sharing the same database.
//
// Everything here is a best-effort mirror of state owned elsewhere. Writes
// are fire-and-forget: a failed Save is logged and swallowed, and the caller
// gets no error signal.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/pressly/goose/v3"

	"github.com/sharmaronit/mindspend-labs/internal/client/bus"
	"github.com/sharmaronit/mindspend-labs/internal/client/migrations"
	"github.com/sharmaronit/mindspend-labs/internal/dbx"
	"github.com/sharmaronit/mindspend-labs/internal/logging"
)

// EventType discriminates store notifications.
type EventType string

const (
	EventUpdated EventType = "storage_updated"
	EventCleared EventType = "storage_cleared"
)

// Event is a single cache change notification. Raw carries the JSON text of
// the new value for updates and is empty for clears. Remote marks events
// re-broadcast from another process.
type Event struct {
	Type   EventType
	Key    string
	Raw    string
	Remote bool
}

// RemoteFeed delivers key changes made by other processes sharing the cache.
// Implementations must fire only for changes that did not originate locally,
// mirroring the platform storage notification the browser gives other tabs.
// An empty raw value signals removal of the key.
type RemoteFeed interface {
	Attach(fn func(key, raw string)) (detach func())
}

// Store is the local cache. Safe for concurrent use; concurrent writers to
// the same key race last-write-wins, which is accepted.
type Store struct {
	db     *sql.DB
	log    logging.Logger
	events *bus.Bus[Event]
}

// RunMigrations applies the embedded cache schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the cache database at dsn and returns
// a ready Store.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, logger), nil
}

// New wraps an already-open database. The schema must exist.
func New(db *sql.DB, logger logging.Logger) *Store {
	return &Store{db: db, log: logger, events: bus.New[Event]()}
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Subscribe registers a listener for cache change events. The cancel
// function must be called when the listener is done.
func (s *Store) Subscribe() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// Save serializes value and writes it under key, then broadcasts an update
// carrying the serialized text. Serialization and storage failures are
// logged and swallowed; callers receive no error signal.
func (s *Store) Save(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Error(ctx, "cache save: marshal failed", "key", key, "error", err)
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(raw))
	if err != nil {
		s.log.Error(ctx, "cache save: write failed", "key", key, "error", err)
		return
	}

	s.events.Publish(Event{Type: EventUpdated, Key: key, Raw: string(raw)})
}

// Load reads the value under key into out. It returns false when the key is
// unset or the stored text cannot be decoded into out.
func (s *Store) Load(ctx context.Context, key string, out any) bool {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.log.Error(ctx, "cache load failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn(ctx, "cache load: undecodable value", "key", key, "error", err)
		return false
	}
	return true
}

// Exists reports key presence without deserializing the value.
func (s *Store) Exists(ctx context.Context, key string) bool {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM cache WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.log.Error(ctx, "cache exists check failed", "key", key, "error", err)
		return false
	}
	return true
}

// Clear removes key and broadcasts a clear notification. Clearing an absent
// key is a no-op success.
func (s *Store) Clear(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key); err != nil {
		s.log.Error(ctx, "cache clear failed", "key", key, "error", err)
		return
	}
	s.events.Publish(Event{Type: EventCleared, Key: key})
}

// ClearAll removes every known key in one transaction and broadcasts a
// clear per key. Used on account deletion, where a partial wipe is worse
// than a failed one, hence the error return.
func (s *Store) ClearAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range KnownKeys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range KnownKeys {
		s.events.Publish(Event{Type: EventCleared, Key: key})
	}
	return nil
}

// ApplyRemote re-broadcasts a change that originated in another process as
// exactly one internal event for that key, so listeners need a single
// subscription regardless of where a change came from. The local table is
// not touched: the other process already wrote the shared database.
func (s *Store) ApplyRemote(key, raw string) {
	if raw == "" {
		s.events.Publish(Event{Type: EventCleared, Key: key, Remote: true})
		return
	}
	s.events.Publish(Event{Type: EventUpdated, Key: key, Raw: raw, Remote: true})
}

// AttachRemote subscribes the store to a feed of external changes. The
// returned detach must be called before the feed or store is closed.
func (s *Store) AttachRemote(feed RemoteFeed) (detach func()) {
	return feed.Attach(s.ApplyRemote)
}
