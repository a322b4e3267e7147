// Package database - metadata key/value high-water marks
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetLastApplied retrieves the timestamp recorded under a metadata key.
// A key never written returns the zero time.
func GetLastApplied(ctx context.Context, db DBConnection, key string) (time.Time, error) {
	row := db.DB.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("get metadata %q: %w", key, err)
	}
	return time.Parse(time.RFC3339, value)
}

// SaveLastApplied updates the timestamp under a metadata key
func SaveLastApplied(ctx context.Context, db DBConnection, key string, t time.Time) error {
	if key == "" {
		return fmt.Errorf("cannot save metadata under an empty key")
	}

	_, err := db.DB.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, t.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save metadata %q: %w", key, err)
	}
	return nil
}
