package thumbnail

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photo-grid/internal/filesystem"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
	"photo-grid/internal/profiler"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultHeight is the thumbnail height in pixels.
const DefaultHeight = 250

// DiskRenderer writes JPEG thumbnails of a fixed height into a cache
// directory.
type DiskRenderer struct {
	cacheDir string
	height   int
	group    singleflight.Group
}

// NewDiskRenderer creates the cache directory if needed.
func NewDiskRenderer(cacheDir string, height int) (*DiskRenderer, error) {
	if height <= 0 {
		height = DefaultHeight
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail dir: %w", err)
	}
	log.Debug("renderer cache dir: %s, height: %d", cacheDir, height)
	return &DiskRenderer{cacheDir: cacheDir, height: height}, nil
}

// ThumbnailPath names the file after the photo id and a hash of the master
// path and thumbnail height. A replaced master or a new height gets a new
// file; master dimensions are not part of the key.
func (r *DiskRenderer) ThumbnailPath(p *photo.Photo) string {
	hash := md5.Sum(fmt.Appendf(nil, "%s:%d", p.Master, r.height))
	return filepath.Join(r.cacheDir, fmt.Sprintf("%d-%x.jpg", p.ID, hash[:6]))
}

// Render implements Renderer.
func (r *DiskRenderer) Render(ctx context.Context, p *photo.Photo, prof *profiler.Profiler) (Size, error) {
	path := r.ThumbnailPath(p)
	if _, err := os.Stat(path); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return Size{}, nil
	}

	v, err, _ := r.group.Do(path, func() (interface{}, error) {
		// Another caller may have finished while we waited.
		if _, err := os.Stat(path); err == nil {
			return Size{}, nil
		}
		if err := ctx.Err(); err != nil {
			return Size{}, err
		}
		metrics.ThumbnailCacheMisses.Inc()
		return r.render(p, path, prof)
	})
	if err != nil {
		return Size{}, err
	}
	return v.(Size), nil
}

func (r *DiskRenderer) render(p *photo.Photo, path string, prof *profiler.Profiler) (Size, error) {
	if _, err := filesystem.StatWithRetry(p.Master, filesystem.DefaultRetryConfig()); err != nil {
		return Size{}, fmt.Errorf("master not accessible: %w", err)
	}

	start := time.Now()
	decoder := "imaging"
	var data []byte
	var master Size
	var err error

	if IsVipsAvailable() {
		decoder = "vips"
		data, master, err = renderWithVips(p.Master, r.height)
		if err != nil {
			log.Debug("vips failed for %s, falling back to imaging: %v", p.Master, err)
			decoder = "imaging"
		}
	}
	if data == nil {
		data, master, err = r.renderWithImaging(p.Master, prof)
		if err != nil {
			return Size{}, err
		}
	}
	prof.AddPoint("decode+resize")

	if err := writeFileAtomic(path, data); err != nil {
		return Size{}, err
	}
	prof.AddPoint("write")

	metrics.ThumbnailRenderDuration.WithLabelValues(decoder).Observe(time.Since(start).Seconds())
	log.Debug("rendered %s (%s, master %dx%d)", filepath.Base(path), decoder, master.Width, master.Height)
	return master, nil
}

func (r *DiskRenderer) renderWithImaging(masterPath string, prof *profiler.Profiler) ([]byte, Size, error) {
	f, err := filesystem.OpenWithRetry(masterPath, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, Size{}, fmt.Errorf("open %s: %w", filepath.Base(masterPath), err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, Size{}, fmt.Errorf("decode %s: %w", filepath.Base(masterPath), err)
	}
	b := img.Bounds()
	master := Size{Width: b.Dx(), Height: b.Dy()}
	prof.AddPoint("decode")

	thumb := imaging.Resize(img, 0, r.height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, Size{}, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), master, nil
}

// writeFileAtomic writes data next to path and renames it into place so
// readers never see a partial thumbnail.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".thumb-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close thumbnail: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename thumbnail: %w", err)
	}
	return nil
}
