package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Keys of the metadata table.
const (
	schemaVersionKey = "schema_version"
	lastImportKey    = "last_import"
)

// metadata reads one value of the metadata table. Missing keys read as "".
func (d *Database) metadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value.String, nil
}

func (d *Database) setMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SchemaVersion returns the schema version the library was migrated to, or
// "" for a library created before versioning.
func (d *Database) SchemaVersion(ctx context.Context) (string, error) {
	return d.metadata(ctx, schemaVersionKey)
}

// LastImport returns when a directory import last finished. The zero time
// means the library was never imported into.
func (d *Database) LastImport(ctx context.Context) (time.Time, error) {
	value, err := d.metadata(ctx, lastImportKey)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", lastImportKey, value, err)
	}
	return t, nil
}

// SetLastImport records the end of a directory import.
func (d *Database) SetLastImport(ctx context.Context, t time.Time) error {
	return d.setMetadata(ctx, lastImportKey, t.UTC().Format(time.RFC3339))
}
