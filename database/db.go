package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("database: not found")

// DB wraps the SQLite handle shared by the secure store and the devserver
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and creates tables
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory: databases intact
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{sql: conn}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return db, nil
}

// Close closes the underlying handle
func (db *DB) Close() error {
	return db.sql.Close()
}

func (db *DB) createTables() error {
	tables := `
	CREATE TABLE IF NOT EXISTS secure_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL,
		profile_image TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Available',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id INTEGER NOT NULL,
		receiver_id INTEGER NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		sent_at TIMESTAMP NOT NULL,
		FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (receiver_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS friend_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_user_id INTEGER NOT NULL,
		to_user_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (from_user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (to_user_id) REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE(from_user_id, to_user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id);
	CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_user_id);
	`

	_, err := db.sql.Exec(tables)
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}
