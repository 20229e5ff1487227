package thumbnail

import (
	"fmt"
	"path/filepath"
	"sync"

	"photo-grid/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsMu          sync.Mutex
	vipsInitialized bool
)

// vipsLogSettings routes libvips messages through the application logger.
// libvips is one notch quieter than the application.
func vipsLogSettings(level logging.LogLevel) (vips.LoggingHandlerFunction, vips.LogLevel) {
	var minLevel vips.LogLevel
	switch level {
	case logging.LevelDebug:
		minLevel = vips.LogLevelInfo
	case logging.LevelInfo:
		minLevel = vips.LogLevelWarning
	case logging.LevelWarn:
		minLevel = vips.LogLevelError
	default:
		minLevel = vips.LogLevelCritical
	}

	handler := func(domain string, l vips.LogLevel, msg string) {
		if l > minLevel {
			return
		}
		switch l {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}
	return handler, minLevel
}

// InitVips starts libvips. concurrency bounds the threads libvips uses for a
// single image; jobs themselves still run one at a time.
func InitVips(concurrency int) {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return
	}

	vips.LoggingSettings(vipsLogSettings(logging.GetLevel()))
	vips.Startup(&vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	logging.Info("libvips initialized (version: %s, concurrency: %d)", vips.Version, concurrency)
}

// ShutdownVips releases libvips. It cannot be started again afterwards.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether InitVips has run.
func IsVipsAvailable() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsInitialized
}

// renderWithVips decodes path with shrink-on-load and returns JPEG bytes of
// the given height together with the oriented master size.
func renderWithVips(path string, height int) ([]byte, Size, error) {
	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, Size{}, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, Size{}, fmt.Errorf("vips auto-rotate: %w", err)
	}
	master := Size{Width: ref.Width(), Height: ref.Height()}
	logging.Debug("vips loaded %s: %dx%d", filepath.Base(path), master.Width, master.Height)

	width := master.Width * height / max(master.Height, 1)
	if err := ref.Thumbnail(max(width, 1), height, vips.InterestingNone); err != nil {
		return nil, Size{}, fmt.Errorf("vips thumbnail: %w", err)
	}

	data, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        85,
		StripMetadata:  true,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, Size{}, fmt.Errorf("vips export: %w", err)
	}
	return data, master, nil
}
