// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - CACHE_DIR: Path to the thumbnail cache (default: /cache)
//   - DATABASE_DIR: Path to the database directory (default: /database)
//   - PORT: HTTP server port, also serving /metrics (default: 8080)
//   - METRICS_ENABLED: Expose Prometheus metrics (default: true)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - ROW_HEIGHT: Target row height in pixels (default: 200)
//   - PAGES_TO_KEEP: Viewport heights of photo data kept above and below (default: 4)
//   - PAGES_TO_PRELOAD: Viewport heights fetched ahead of scrolling (default: 3)
//   - SECTION_HEAD_HEIGHT: Section header height in pixels (default: 60)
//   - THUMBNAIL_HEIGHT: Rendered thumbnail height in pixels (default: 250)
//   - PROFILE_LAYOUT, PROFILE_THUMBNAILS: Log timing breakdowns at debug level
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - VIPS_CONCURRENCY: libvips decode threads (default: GOMAXPROCS, max 4)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
