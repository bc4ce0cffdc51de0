package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Cache = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// One connection serializes writers from parallel format workers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS formatted (
			path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			options_hash TEXT NOT NULL,
			formatted_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_formatted_at ON formatted(formatted_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Hashes are stored as hex text; SQLite integers are signed.
func hashText(h uint64) string {
	return strconv.FormatUint(h, 16)
}

func (s *SQLiteStore) Lookup(ctx context.Context, path string, contentHash, optionsHash uint64) (bool, error) {
	var content, options string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash, options_hash FROM formatted WHERE path = ?`, path,
	).Scan(&content, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return content == hashText(contentHash) && options == hashText(optionsHash), nil
}

func (s *SQLiteStore) Record(ctx context.Context, path string, contentHash, optionsHash uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO formatted (path, content_hash, options_hash, formatted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash=excluded.content_hash,
			options_hash=excluded.options_hash,
			formatted_at=excluded.formatted_at
	`, path, hashText(contentHash), hashText(optionsHash), time.Now().Unix())
	return err
}

func (s *SQLiteStore) Forget(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM formatted WHERE path = ?`, path)
	return err
}

func (s *SQLiteStore) Prune(ctx context.Context, keep func(path string) bool) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM formatted`)
	if err != nil {
		return 0, err
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, err
		}
		if !keep(path) {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM formatted WHERE path = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, path := range stale {
		if _, err := stmt.ExecContext(ctx, path); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(stale), nil
}
