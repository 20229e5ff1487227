// Package metrics provides Prometheus instrumentation for the photo grid service.
//
// All metrics are prefixed with "photo_grid_" and registered with the default
// registry through promauto.
//
// # Metric Categories
//
// ## Layout Metrics
//
//   - LayoutDuration: Histogram of layout pass duration
//   - LayoutPassesTotal: Counter of passes by result (reused, changed)
//   - SectionLayoutsComputed: Counter of section layouts by kind (packed, estimated, dummy)
//
// ## Section Lifecycle Metrics
//
//   - SectionsEvictedTotal: Counter of sections whose photos were forgotten
//   - SectionFetchesTotal: Counter of section fetches by status
//   - SectionFetchDuration: Histogram of section fetch duration
//   - SectionFetchInFlight: Gauge, 1 while a fetch is running
//   - SectionsTotal, SectionsLoaded, PhotosLoaded: residency gauges
//
// ## Thumbnail Metrics
//
//   - ThumbnailQueueLength: Gauge of pending jobs
//   - ThumbnailJobsTotal: Counter of jobs by outcome
//   - ThumbnailRenderDuration: Histogram of render time by decoder
//   - ThumbnailCacheHits, ThumbnailCacheMisses: on-disk cache counters
//
// ## Database and HTTP Metrics
//
//   - DBQueryTotal, DBQueryDuration, DBConnectionsOpen
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// The Collector polls a StatsProvider on an interval and refreshes the
// residency gauges. InitializeMetrics pre-populates label combinations so
// counters show up as zero before the first event.
package metrics
