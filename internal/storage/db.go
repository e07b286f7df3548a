// Package storage is the only persistence boundary of the application: a
// synchronous key-value store of JSON documents kept in a sqlite table.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Keys of the persisted collections.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyExpenses    = "expenses"
	KeyCommittees  = "committees"
	KeyMessages    = "messages"
	KeyWinners     = "winners"
)

// Store wraps a sql.DB holding one JSON document per key.
//
// Reads and writes never return errors to callers: a failed read yields the
// default value and a failed write is dropped, both are logged. Every Set
// replaces the whole document, so two processes writing the same key race
// with last-write-wins semantics.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// NewDB opens the store at path (":memory:" for an ephemeral one) and runs migrations.
func NewDB(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// an in-memory database lives per connection
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	s := &Store{conn: conn, logger: logger.With(slog.String("component", "storage"))}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Get decodes the document stored under key, or returns def when the key is
// absent or its document cannot be decoded.
func Get[T any](s *Store, key string, def T) T {
	var v T
	if !s.Load(key, &v) {
		return def
	}
	return v
}

// Load decodes the document stored under key into dst and reports whether it did.
func (s *Store) Load(key string, dst any) bool {
	raw, ok := s.raw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Error("Failed to decode stored value", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Has reports whether a document exists under key.
func (s *Store) Has(key string) bool {
	_, ok := s.raw(key)
	return ok
}

func (s *Store) raw(key string) ([]byte, bool) {
	var value string
	err := s.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		s.logger.Error("Failed to read from store", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	return []byte(value), true
}

// Set encodes value as JSON and writes it under key.
func (s *Store) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to encode value", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	s.setRaw(key, data)
}

func (s *Store) setRaw(key string, data []byte) {
	_, err := s.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now(),
	)
	if err != nil {
		s.logger.Error("Failed to write to store", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Remove deletes the document under key. Removing a missing key is a no-op.
func (s *Store) Remove(key string) {
	if _, err := s.conn.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		s.logger.Error("Failed to remove from store", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Clear deletes every document.
func (s *Store) Clear() {
	if _, err := s.conn.Exec("DELETE FROM kv"); err != nil {
		s.logger.Error("Failed to clear store", slog.String("error", err.Error()))
	}
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys() []string {
	rows, err := s.conn.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		s.logger.Error("Failed to list keys", slog.String("error", err.Error()))
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			s.logger.Error("Failed to scan key", slog.String("error", err.Error()))
			return keys
		}
		keys = append(keys, k)
	}
	return keys
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
