// Package storage persists the whole document as a single JSON blob in a
// shared SQLite slot. Every writer stamps meta.updatedAt and its client id;
// readers adopt a stored document wholesale only when it is strictly newer
// than their own. That last-writer-wins rule is a best-effort convergence
// model for concurrently running instances, not a consistency guarantee.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jakobkreft/CakeTimer/internal/state"
)

// DefaultSlot is the storage key the app shares across instances.
const DefaultSlot = "ot.v3.state"

const currentVersion = 1

// Store is the shared document slot.
type Store struct {
	db       *sql.DB
	clientID string
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, clientID: uuid.NewString()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ClientID identifies this instance in the write metadata.
func (s *Store) ClientID() string { return s.clientID }

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	const ddl = `
	CREATE TABLE IF NOT EXISTS slots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// Load reads and hydrates the slot. A missing slot, a read error or a
// malformed blob all degrade to a fresh default document; loading never
// fails hard.
func (s *Store) Load(slot string) *state.State {
	raw, ok := s.read(slot)
	if !ok {
		return state.Default()
	}
	return state.Hydrate(raw)
}

// Peek re-reads the slot without defaulting, for sync checks. The second
// return value is false when the slot is missing or unreadable.
func (s *Store) Peek(slot string) (*state.State, bool) {
	raw, ok := s.read(slot)
	if !ok {
		return nil, false
	}
	return state.Hydrate(raw), true
}

func (s *Store) read(slot string) ([]byte, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, slot).Scan(&value)
	if err != nil {
		return nil, false
	}
	return []byte(value), true
}

// Save stamps the write metadata and replaces the slot. Callers may treat a
// returned error as best-effort: the in-memory document stays authoritative
// for this instance either way.
func (s *Store) Save(slot string, st *state.State) error {
	st.Version = state.Version
	st.Meta.UpdatedAt = time.Now().UnixMilli()
	st.Meta.ClientID = s.clientID

	raw, err := st.Marshal()
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		slot, string(raw), st.Meta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	return nil
}

// Newer implements the last-writer-wins rule: adopt incoming only when its
// update stamp is strictly newer than ours. There is no field-level merge;
// older data is discarded wholesale.
func Newer(current, incoming *state.State) bool {
	if incoming == nil {
		return false
	}
	return incoming.Meta.UpdatedAt > current.Meta.UpdatedAt
}

// DefaultDBPath returns ~/.config/caketimer/caketimer.db.
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "caketimer", "caketimer.db"), nil
}
