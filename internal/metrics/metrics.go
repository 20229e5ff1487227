package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Layout metrics
var (
	LayoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_grid_layout_duration_seconds",
			Help:    "Duration of a grid layout pass in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	LayoutPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_layout_passes_total",
			Help: "Total number of layout passes by result",
		},
		[]string{"result"}, // "reused" or "changed"
	)

	SectionLayoutsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_section_layouts_computed_total",
			Help: "Total number of section layouts computed by kind",
		},
		[]string{"kind"}, // "packed", "estimated", "dummy"
	)
)

// Section lifecycle metrics
var (
	SectionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_grid_sections_evicted_total",
			Help: "Total number of sections whose photo data was forgotten",
		},
	)

	SectionFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_section_fetches_total",
			Help: "Total number of section photo fetches by status",
		},
		[]string{"status"}, // "success" or "error"
	)

	SectionFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_grid_section_fetch_duration_seconds",
			Help:    "Duration of section photo fetches in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SectionFetchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_section_fetch_in_flight",
			Help: "Whether a section fetch is currently running (1 = running, 0 = idle)",
		},
	)

	SectionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_sections",
			Help: "Number of sections in the library view",
		},
	)

	SectionsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_sections_loaded",
			Help: "Number of sections whose photo data is resident",
		},
	)

	PhotosLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_photos_loaded",
			Help: "Number of photo records resident in memory",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_thumbnail_queue_length",
			Help: "Number of thumbnail jobs waiting to run",
		},
	)

	ThumbnailJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_thumbnail_jobs_total",
			Help: "Total number of thumbnail jobs by outcome",
		},
		[]string{"status"}, // "rendered", "failed", "canceled", "coalesced"
	)

	ThumbnailRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_grid_thumbnail_render_duration_seconds",
			Help:    "Thumbnail render duration in seconds by decoder",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"decoder"}, // "vips" or "imaging"
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_grid_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail renders skipped because the file existed",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_grid_thumbnail_cache_misses_total",
			Help: "Total number of thumbnails that had to be rendered",
		},
	)
)

// Indexer metrics
var (
	IndexerParallelWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_indexer_parallel_workers",
			Help: "Number of workers used by the last import",
		},
	)

	IndexerPhotosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_indexer_photos_total",
			Help: "Total number of image files seen by imports, by result",
		},
		[]string{"result"}, // "imported" or "skipped"
	)
)

// Filesystem metrics
var (
	FilesystemRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_filesystem_retries_total",
			Help: "Total number of filesystem operations that needed NFS retries, by final result",
		},
		[]string{"operation", "result"}, // "stat"/"open", "success"/"failure"
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation"},
	)
)

// Controller metrics
var (
	InfoPhotoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_info_photo_requests_total",
			Help: "Total number of photo detail requests by status",
		},
		[]string{"status"}, // "success", "error", "canceled"
	)

	StoreActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_store_actions_total",
			Help: "Total number of dispatched store actions",
		},
		[]string{"action"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_grid_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_grid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_grid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_grid_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_grid_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
