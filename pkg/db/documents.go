package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Document is a stored JSON blob.
type Document struct {
	Key       string
	Body      json.RawMessage
	UpdatedAt time.Time
}

// DocumentStore provides access to JSON documents.
type DocumentStore interface {
	Get(ctx context.Context, key string) (*Document, error)
	Put(ctx context.Context, key string, body json.RawMessage) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// ScalarStore provides access to small text values.
type ScalarStore interface {
	Get(ctx context.Context, key string) (string, error)
	Replace(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Documents returns a DocumentStore for this database.
func (db *DB) Documents() DocumentStore {
	return &documentStore{db: db}
}

// Scalars returns a ScalarStore for this database.
func (db *DB) Scalars() ScalarStore {
	return &scalarStore{db: db}
}

type documentStore struct {
	db *DB
}

func (s *documentStore) Get(ctx context.Context, key string) (*Document, error) {
	d := &Document{Key: key}
	var body, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT body, updated_at FROM documents WHERE key = ?
	`, key).Scan(&body, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Body = json.RawMessage(body)
	d.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return d, nil
}

func (s *documentStore) Put(ctx context.Context, key string, body json.RawMessage) error {
	if !json.Valid(body) {
		return fmt.Errorf("document %s: %w", key, ErrInvalidDocument)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, body) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = datetime('now')
	`, key, string(body))
	return err
}

func (s *documentStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	return err
}

func (s *documentStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM documents ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type scalarStore struct {
	db *DB
}

func (s *scalarStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM scalars WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrScalarNotFound
	}
	return value, err
}

// Replace deletes any previous value before inserting, so a scalar is
// always overwritten and never appended to.
func (s *scalarStore) Replace(ctx context.Context, key, value string) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scalars WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to remove scalar %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO scalars (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to write scalar %s: %w", key, err)
		}
		return nil
	})
}

func (s *scalarStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scalars WHERE key = ?`, key)
	return err
}
