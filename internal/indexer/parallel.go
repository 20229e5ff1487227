package indexer

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF header support
	_ "image/jpeg" // JPEG header support
	_ "image/png"  // PNG header support
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/karrick/godirwalk"
	_ "golang.org/x/image/bmp"  // BMP header support
	_ "golang.org/x/image/tiff" // TIFF header support
	_ "golang.org/x/image/webp" // WebP header support

	"photo-grid/internal/filesystem"
	"photo-grid/internal/logging"
	"photo-grid/internal/mediatypes"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
	"photo-grid/internal/workers"
)

// ParallelWalkerConfig configures the parallel directory walker
type ParallelWalkerConfig struct {
	// NumWorkers is the number of header-reading workers
	NumWorkers int
	// BatchSize is the number of photos upserted per transaction
	BatchSize int
	// ChannelBuffer is the size of the work channel buffer
	ChannelBuffer int
	// SkipHidden skips files and directories starting with "."
	SkipHidden bool
}

// IndexWorkersEnv overrides the number of header reading workers.
const IndexWorkersEnv = "INDEX_WORKERS"

// maxIndexWorkers caps the automatic worker count.
const maxIndexWorkers = 16

// DefaultParallelWalkerConfig returns the defaults. NumWorkers is two per
// CPU, at most 16, unless INDEX_WORKERS overrides it.
func DefaultParallelWalkerConfig() ParallelWalkerConfig {
	return ParallelWalkerConfig{
		NumWorkers:    workers.ForIO(IndexWorkersEnv, maxIndexWorkers),
		BatchSize:     500,
		ChannelBuffer: 1000,
		SkipHidden:    true,
	}
}

// fileJob represents a file to be processed
type fileJob struct {
	path string
	ext  string
}

// fileResult represents a processed file
type fileResult struct {
	photo *photo.Photo
	path  string
	err   error
}

// ParallelWalker walks a directory tree and reads image headers in parallel
type ParallelWalker struct {
	config ParallelWalkerConfig
	root   string

	jobs    chan fileJob
	results chan fileResult
	wg      sync.WaitGroup

	filesProcessed atomic.Int64
	errorsCount    atomic.Int64
}

// NewParallelWalker creates a new parallel directory walker
func NewParallelWalker(root string, config ParallelWalkerConfig) *ParallelWalker {
	config.NumWorkers = max(config.NumWorkers, 1)
	return &ParallelWalker{
		config:  config,
		root:    filepath.Clean(root),
		jobs:    make(chan fileJob, config.ChannelBuffer),
		results: make(chan fileResult, config.ChannelBuffer),
	}
}

// Walk reads every image below the root. Files whose header cannot be read
// are logged and counted in Stats, not returned as errors.
func (pw *ParallelWalker) Walk(ctx context.Context) ([]*photo.Photo, error) {
	logging.Info("Starting parallel directory walk of %s with %d workers", pw.root, pw.config.NumWorkers)
	startTime := time.Now()
	metrics.IndexerParallelWorkers.Set(float64(pw.config.NumWorkers))

	for i := 0; i < pw.config.NumWorkers; i++ {
		pw.wg.Add(1)
		go pw.worker(ctx, i)
	}

	var photos []*photo.Photo
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for result := range pw.results {
			if result.err != nil {
				pw.errorsCount.Add(1)
				logging.Warn("Skipping %s: %v", result.path, result.err)
				continue
			}
			photos = append(photos, result.photo)
		}
	}()

	err := pw.walkAndEnqueue(ctx)
	close(pw.jobs)
	pw.wg.Wait()
	close(pw.results)
	<-collectorDone

	logging.Info("Parallel walk complete: %d photos in %v (errors: %d)",
		pw.filesProcessed.Load(), time.Since(startTime), pw.errorsCount.Load())

	if err == nil {
		err = ctx.Err()
	}
	return photos, err
}

// walkAndEnqueue walks the directory tree and sends jobs to workers
func (pw *ParallelWalker) walkAndEnqueue(ctx context.Context) error {
	return godirwalk.Walk(pw.root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if path != pw.root && pw.config.SkipHidden && strings.HasPrefix(de.Name(), ".") {
				return godirwalk.SkipThis
			}
			if de.IsDir() {
				return nil
			}

			ext := mediatypes.NormalizeExtension(filepath.Ext(de.Name()))
			if !mediatypes.IsImage(ext) {
				return nil
			}

			select {
			case pw.jobs <- fileJob{path: path, ext: ext}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			logging.Warn("Error accessing path %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
}

// worker processes files from the jobs channel
func (pw *ParallelWalker) worker(ctx context.Context, id int) {
	defer pw.wg.Done()
	logging.Debug("Worker %d started", id)

	for job := range pw.jobs {
		if ctx.Err() != nil {
			continue
		}
		p, err := readPhoto(job.path, job.ext)
		if err == nil {
			pw.filesProcessed.Add(1)
		}
		pw.results <- fileResult{photo: p, path: job.path, err: err}
	}

	logging.Debug("Worker %d finished", id)
}

// readPhoto builds a photo record from the file's header and mtime.
func readPhoto(path, ext string) (*photo.Photo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f, err := filesystem.OpenWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unreadable image header: %w", err)
	}

	modTime := info.ModTime()
	return &photo.Photo{
		Title:        strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		Master:       abs,
		Extension:    strings.TrimPrefix(ext, "."),
		Orientation:  1,
		MasterWidth:  cfg.Width,
		MasterHeight: cfg.Height,
		Date:         modTime.Format("2006-01-02"),
		CreatedAt:    modTime,
	}, nil
}

// Stats returns current processing statistics
func (pw *ParallelWalker) Stats() (files, errors int64) {
	return pw.filesProcessed.Load(), pw.errorsCount.Load()
}
