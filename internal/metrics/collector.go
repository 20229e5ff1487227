package metrics

import (
	"sync"
	"time"

	"photo-grid/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics of one grid instance
type Stats struct {
	TotalSections  int
	LoadedSections int
	LoadedPhotos   int
	QueuedJobs     int
	FetchInFlight  bool
}

// DBMetricsUpdater refreshes connection pool gauges.
type DBMetricsUpdater interface {
	UpdateDBMetrics()
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	db            DBMetricsUpdater
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewCollector creates a new metrics collector. db may be nil.
func NewCollector(provider StatsProvider, db DBMetricsUpdater, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		db:            db,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.db != nil {
		c.db.UpdateDBMetrics()
	}

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	SectionsTotal.Set(float64(stats.TotalSections))
	SectionsLoaded.Set(float64(stats.LoadedSections))
	PhotosLoaded.Set(float64(stats.LoadedPhotos))
	ThumbnailQueueLength.Set(float64(stats.QueuedJobs))
	if stats.FetchInFlight {
		SectionFetchInFlight.Set(1)
	} else {
		SectionFetchInFlight.Set(0)
	}

	logging.Debug("Metrics collected: sections=%d, loaded=%d, photos=%d, queued=%d",
		stats.TotalSections, stats.LoadedSections, stats.LoadedPhotos, stats.QueuedJobs)
}
