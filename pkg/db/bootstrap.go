package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// TimezoneKey is the scalar holding the detected system timezone.
const TimezoneKey = "timezone"

// Bootstrap seeds the database with default documents on first run.
// Existing documents are left untouched.
func (db *DB) Bootstrap(ctx context.Context, seeds map[string]json.RawMessage) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		for key, body := range seeds {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO documents (key, body) VALUES (?, ?)
				ON CONFLICT(key) DO NOTHING
			`, key, string(body)); err != nil {
				return fmt.Errorf("failed to seed document %s: %w", key, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scalars (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING
		`, TimezoneKey, DetectTimezone()); err != nil {
			return fmt.Errorf("failed to seed timezone: %w", err)
		}

		return nil
	})
}

// DetectTimezone attempts to detect the system timezone.
func DetectTimezone() string {
	switch runtime.GOOS {
	case "darwin":
		// Try systemsetup first
		out, err := exec.Command("systemsetup", "-gettimezone").Output()
		if err == nil {
			parts := strings.SplitN(string(out), ": ", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}

		// Fallback: read /etc/localtime symlink
		if link, err := os.Readlink("/etc/localtime"); err == nil {
			if idx := strings.Index(link, "zoneinfo/"); idx != -1 {
				return link[idx+9:]
			}
		}

	case "linux":
		// Try timedatectl first (systemd)
		out, err := exec.Command("timedatectl", "show", "--property=Timezone", "--value").Output()
		if err == nil {
			return strings.TrimSpace(string(out))
		}

		// Fallback: /etc/timezone file
		if data, err := os.ReadFile("/etc/timezone"); err == nil {
			return strings.TrimSpace(string(data))
		}

		// Fallback: /etc/localtime symlink
		if link, err := os.Readlink("/etc/localtime"); err == nil {
			if idx := strings.Index(link, "zoneinfo/"); idx != -1 {
				return link[idx+9:]
			}
		}
	}

	return "UTC"
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scalars WHERE key = ?`, TimezoneKey).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
