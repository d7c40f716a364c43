// Package prefs persists the widget's display preference. A single boolean
// under a fixed key, read once at start-up and written on every toggle.
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const darkModeKey = "dark_mode"

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create prefs directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open prefs database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize prefs schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DarkMode returns the stored flag; absence means false.
func (s *Store) DarkMode() (bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, darkModeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read preference: %w", err)
	}
	return value == "1", nil
}

func (s *Store) SetDarkMode(on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	_, err := s.db.Exec(`INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, darkModeKey, value)
	if err != nil {
		return fmt.Errorf("write preference: %w", err)
	}
	return nil
}
