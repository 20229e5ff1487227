package indexer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"photo-grid/internal/database"
	"photo-grid/internal/logging"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
)

// Result summarises one import run.
type Result struct {
	Imported int
	Skipped  int
	Duration time.Duration
}

// Import walks root and upserts every readable image into db.
func Import(ctx context.Context, db *database.Database, root string, config ParallelWalkerConfig) (Result, error) {
	start := time.Now()
	var result Result

	info, err := os.Stat(root)
	if err != nil {
		return result, fmt.Errorf("cannot read %s: %w", root, err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("%s is not a directory", root)
	}

	walker := NewParallelWalker(root, config)
	photos, err := walker.Walk(ctx)
	_, skipped := walker.Stats()
	result.Skipped = int(skipped)
	if err != nil {
		return result, err
	}

	sort.Slice(photos, func(i, j int) bool { return photos[i].Master < photos[j].Master })

	batchSize := max(config.BatchSize, 1)
	for from := 0; from < len(photos); from += batchSize {
		to := min(from+batchSize, len(photos))
		if err := upsertBatch(db, photos[from:to]); err != nil {
			return result, err
		}
		result.Imported = to
	}

	result.Duration = time.Since(start)
	if err := db.SetLastImport(ctx, time.Now()); err != nil {
		return result, err
	}
	metrics.IndexerPhotosTotal.WithLabelValues("imported").Add(float64(result.Imported))
	metrics.IndexerPhotosTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
	logging.Info("Imported %d photos from %s in %v (%d skipped)",
		result.Imported, root, result.Duration, result.Skipped)
	return result, nil
}

func upsertBatch(db *database.Database, batch []*photo.Photo) (err error) {
	tx, err := db.BeginBatch()
	if err != nil {
		return err
	}
	defer func() { err = db.EndBatch(tx, err) }()

	for _, p := range batch {
		if _, err := db.UpsertPhoto(tx, p); err != nil {
			return err
		}
	}
	return nil
}
