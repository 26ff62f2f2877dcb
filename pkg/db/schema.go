package db

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	stmts   string
}

// migrations are applied in order; each runs in its own transaction.
var migrations = []migration{
	{version: 1, stmts: `
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- effect list, device settings
CREATE TABLE IF NOT EXISTS documents (
    key         TEXT PRIMARY KEY,
    body        TEXT NOT NULL,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- current effect index, timezone
CREATE TABLE IF NOT EXISTS scalars (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Migrate applies every migration newer than the stored schema version.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply schema v%d: %w", m.version, err)
		}
	}
	return nil
}

func (db *DB) apply(ctx context.Context, m migration) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.stmts); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, m.version)
		return err
	})
}

// SchemaVersion returns the applied schema version, or 0 for an empty
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var tables int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&tables); err != nil || tables == 0 {
		return 0, err
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	return version, err
}
