package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"photo-grid/internal/photo"
)

const photoColumns = `p.id, p.title, p.master, p.extension, p.orientation, p.master_width, p.master_height,
	p.flag, p.trashed, p.date, p.created_at, p.exposure_time, p.iso, p.aperture, p.focal_length`

// filterClause returns the WHERE conditions and arguments selecting the
// photos visible under filter.
func filterClause(filter photo.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	switch filter.Mode {
	case photo.FilterFlagged:
		conds = append(conds, "p.flag = 1", "p.trashed = 0")
	case photo.FilterTrash:
		conds = append(conds, "p.trashed = 1")
	default:
		conds = append(conds, "p.trashed = 0")
	}

	if len(filter.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Tags)), ",")
		conds = append(conds, fmt.Sprintf(`p.id IN (
			SELECT pt.photo_id FROM photo_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.name IN (%s)
			GROUP BY pt.photo_id
			HAVING COUNT(DISTINCT t.id) = ?)`, placeholders))
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
		args = append(args, len(filter.Tags))
	}

	return strings.Join(conds, " AND "), args
}

// sectionTitle formats a section id such as "2018-05-12" for display.
func sectionTitle(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// ListSections returns one unloaded section per capture date with at least
// one photo matching filter, newest first.
func (d *Database) ListSections(ctx context.Context, filter photo.Filter) (sections []*photo.Section, err error) {
	start := time.Now()
	defer func() { recordQuery("list_sections", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	where, args := filterClause(filter)
	query := fmt.Sprintf(`
		SELECT p.date, COUNT(*)
		FROM photos p
		WHERE %s
		GROUP BY p.date
		ORDER BY p.date DESC
	`, where)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, &photo.Section{
			ID:    photo.SectionID(date),
			Title: sectionTitle(date),
			Count: count,
		})
	}
	return sections, rows.Err()
}

// FetchSectionPhotos returns the photos of one section in display order.
func (d *Database) FetchSectionPhotos(ctx context.Context, id photo.SectionID, filter photo.Filter) (photos []*photo.Photo, err error) {
	start := time.Now()
	defer func() { recordQuery("fetch_section_photos", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	where, args := filterClause(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM photos p
		WHERE p.date = ? AND %s
		ORDER BY p.created_at, p.id
	`, photoColumns, where)

	rows, err := d.db.QueryContext(ctx, query, append([]interface{}{string(id)}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photos of section %s: %w", id, err)
	}
	defer rows.Close()

	photos = []*photo.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	return photos, nil
}

// FetchPhotoDetail returns a photo with its tags and versions.
func (d *Database) FetchPhotoDetail(ctx context.Context, id photo.PhotoID) (detail *photo.PhotoDetail, err error) {
	start := time.Now()
	defer func() { recordQuery("fetch_photo_detail", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM photos p WHERE p.id = ?", photoColumns), int64(id))
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrPhotoNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo %d: %w", id, err)
	}

	detail = &photo.PhotoDetail{Photo: p, Tags: []string{}}

	detail.Tags, err = queryStrings(ctx, d.db, `
		SELECT t.name FROM tags t
		JOIN photo_tags pt ON pt.tag_id = t.id
		WHERE pt.photo_id = ?
		ORDER BY t.name COLLATE NOCASE
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags of photo %d: %w", id, err)
	}

	detail.Versions, err = queryStrings(ctx, d.db,
		"SELECT name FROM photo_versions WHERE photo_id = ? ORDER BY id", int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch versions of photo %d: %w", id, err)
	}

	return detail, nil
}

// UpdatePhotoMasterSize stores master dimensions discovered after import.
func (d *Database) UpdatePhotoMasterSize(ctx context.Context, id photo.PhotoID, width, height int) (err error) {
	start := time.Now()
	defer func() { recordQuery("update_master_size", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"UPDATE photos SET master_width = ?, master_height = ? WHERE id = ?",
		width, height, int64(id))
	if err != nil {
		return fmt.Errorf("failed to update master size of photo %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrPhotoNotFound, id)
	}
	return nil
}

// UpsertPhoto inserts or updates a photo keyed by its master path within a
// batch transaction and returns its id.
func (d *Database) UpsertPhoto(tx *sql.Tx, p *photo.Photo) (photo.PhotoID, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	date := p.Date
	if date == "" {
		date = createdAt.Format("2006-01-02")
	}

	var id int64
	err := tx.QueryRowContext(context.Background(), `
		INSERT INTO photos (title, master, extension, orientation, master_width, master_height,
			flag, trashed, date, created_at, exposure_time, iso, aperture, focal_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(master) DO UPDATE SET
			title = excluded.title,
			extension = excluded.extension,
			orientation = excluded.orientation,
			master_width = excluded.master_width,
			master_height = excluded.master_height,
			flag = excluded.flag,
			trashed = excluded.trashed,
			date = excluded.date,
			created_at = excluded.created_at,
			exposure_time = excluded.exposure_time,
			iso = excluded.iso,
			aperture = excluded.aperture,
			focal_length = excluded.focal_length
		RETURNING id
	`,
		p.Title, p.Master, p.Extension, p.Orientation, p.MasterWidth, p.MasterHeight,
		p.Flag, p.Trashed, date, createdAt.Unix(), p.ExposureTime, p.ISO, p.Aperture, p.FocalLength,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert photo %s: %w", p.Master, err)
	}
	return photo.PhotoID(id), nil
}

// CountPhotos returns the number of photos that are not trashed.
func (d *Database) CountPhotos(ctx context.Context) (count int, err error) {
	start := time.Now()
	defer func() { recordQuery("count_photos", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos WHERE trashed = 0").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhoto(row rowScanner) (*photo.Photo, error) {
	var p photo.Photo
	var id, createdAt int64
	err := row.Scan(&id, &p.Title, &p.Master, &p.Extension, &p.Orientation,
		&p.MasterWidth, &p.MasterHeight, &p.Flag, &p.Trashed, &p.Date, &createdAt,
		&p.ExposureTime, &p.ISO, &p.Aperture, &p.FocalLength)
	if err != nil {
		return nil, err
	}
	p.ID = photo.PhotoID(id)
	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
