package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// reasonable defaults for sqlite with concurrent readers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Connector hands out a process-wide shared *sql.DB, opened lazily on first
// use. Concurrent first callers trigger at most one underlying open and all
// observe its single outcome.
type Connector struct {
	path string

	once sync.Once
	db   *sql.DB
	err  error
}

func NewConnector(path string) *Connector {
	return &Connector{path: path}
}

// DB returns the shared handle, opening it on the first call.
func (c *Connector) DB() (*sql.DB, error) {
	c.once.Do(func() {
		c.db, c.err = Open(c.path)
	})
	return c.db, c.err
}

// Close releases the handle if it was ever opened.
func (c *Connector) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
