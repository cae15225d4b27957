package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// InitDB opens the SQLite file at path and creates the key-value table.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create key-value table (one row per stored key, value is JSON text)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	log.WithField("path", path).Debug("database initialized")
	return db, nil
}

// SQLiteMedium stores items as rows of the kv table.
type SQLiteMedium struct {
	db *sql.DB
}

func NewSQLiteMedium(db *sql.DB) *SQLiteMedium {
	return &SQLiteMedium{db: db}
}

// GetItem retrieves the raw value stored under key
func (s *SQLiteMedium) GetItem(key string) (string, bool, error) {
	row := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query item: %w", err)
	}

	return value, true, nil
}

// SetItem saves or replaces the value stored under key
func (s *SQLiteMedium) SetItem(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	return nil
}

func (s *SQLiteMedium) RemoveItem(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (s *SQLiteMedium) Clear() error {
	if _, err := s.db.Exec("DELETE FROM kv"); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return nil
}

func (s *SQLiteMedium) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func (s *SQLiteMedium) Key(index int) (string, bool, error) {
	if index < 0 {
		return "", false, nil
	}

	var key string
	err := s.db.QueryRow("SELECT key FROM kv ORDER BY key LIMIT 1 OFFSET ?", index).Scan(&key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key: %w", err)
	}

	return key, true, nil
}
