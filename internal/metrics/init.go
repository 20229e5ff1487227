package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, result := range []string{"reused", "changed"} {
		LayoutPassesTotal.WithLabelValues(result)
	}

	for _, kind := range []string{"packed", "estimated", "dummy"} {
		SectionLayoutsComputed.WithLabelValues(kind)
	}

	for _, status := range []string{"success", "error"} {
		SectionFetchesTotal.WithLabelValues(status)
	}

	for _, status := range []string{"rendered", "failed", "canceled", "coalesced"} {
		ThumbnailJobsTotal.WithLabelValues(status)
	}

	for _, decoder := range []string{"vips", "imaging"} {
		ThumbnailRenderDuration.WithLabelValues(decoder)
	}

	for _, result := range []string{"imported", "skipped"} {
		IndexerPhotosTotal.WithLabelValues(result)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemStaleErrors.WithLabelValues(op)
		for _, result := range []string{"success", "failure"} {
			FilesystemRetriesTotal.WithLabelValues(op, result)
		}
	}

	for _, status := range []string{"success", "error", "canceled"} {
		InfoPhotoRequestsTotal.WithLabelValues(status)
	}
}
