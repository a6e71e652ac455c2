package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const metaInitialised = "servers_initialised"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS servers (
		position INTEGER NOT NULL,
		name TEXT PRIMARY KEY,
		url TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_servers_position ON servers(position)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// SQLiteStore keeps the registry in a single sqlite file
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration error: %w\nSQL: %s", err, m)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaInitialised).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, url FROM servers ORDER BY position`)
	if err != nil {
		return nil, false, fmt.Errorf("query servers: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Name, &entry.URL); err != nil {
			return nil, false, fmt.Errorf("scan server: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate servers: %w", err)
	}
	return entries, true, nil
}

// Save replaces the whole list in one transaction
func (s *SQLiteStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM servers`); err != nil {
		return fmt.Errorf("clear servers: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO servers (position, name, url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, entry := range entries {
		if _, err := stmt.ExecContext(ctx, i, entry.Name, entry.URL); err != nil {
			return fmt.Errorf("insert server %s: %w", entry.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, '1') ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaInitialised); err != nil {
		return fmt.Errorf("mark initialised: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
