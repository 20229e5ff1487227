package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photo-grid/internal/photo"
)

// TagPhoto attaches the tag name to a photo, creating the tag if needed.
func (d *Database) TagPhoto(ctx context.Context, id photo.PhotoID, name string) (err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("tag name cannot be empty")
	}

	start := time.Now()
	defer func() { recordQuery("tag_photo", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = func() error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name); err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO photo_tags (photo_id, tag_id)
			SELECT p.id, t.id FROM photos p, tags t
			WHERE p.id = ? AND t.name = ? COLLATE NOCASE
		`, int64(id), name)
		if err != nil {
			return fmt.Errorf("failed to tag photo: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) > 0 FROM photos WHERE id = ?", int64(id)).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %d", ErrPhotoNotFound, id)
			}
		}
		return nil
	}()

	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	return tx.Commit()
}

// AddPhotoVersion records a named version (edit) of a photo.
func (d *Database) AddPhotoVersion(ctx context.Context, id photo.PhotoID, name string) (err error) {
	start := time.Now()
	defer func() { recordQuery("add_photo_version", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO photo_versions (photo_id, name) VALUES (?, ?)", int64(id), name)
	if err != nil {
		return fmt.Errorf("failed to add version of photo %d: %w", id, err)
	}
	return nil
}

// ListTags returns all tag names in alphabetical order.
func (d *Database) ListTags(ctx context.Context) (tags []string, err error) {
	start := time.Now()
	defer func() { recordQuery("list_tags", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return queryStrings(ctx, d.db, "SELECT name FROM tags ORDER BY name COLLATE NOCASE")
}
