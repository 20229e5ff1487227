package metrics

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	stats Stats
	calls atomic.Int32
}

func (m *mockStatsProvider) GetStats() Stats {
	m.calls.Add(1)
	return m.stats
}

type mockDBUpdater struct {
	calls atomic.Int32
}

func (m *mockDBUpdater) UpdateDBMetrics() {
	m.calls.Add(1)
}

func TestCollectorCollectUpdatesGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		TotalSections:  12,
		LoadedSections: 4,
		LoadedPhotos:   180,
		QueuedJobs:     7,
		FetchInFlight:  true,
	}}
	db := &mockDBUpdater{}

	c := NewCollector(provider, db, time.Hour)
	c.collect()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"SectionsTotal", testutil.ToFloat64(SectionsTotal), 12},
		{"SectionsLoaded", testutil.ToFloat64(SectionsLoaded), 4},
		{"PhotosLoaded", testutil.ToFloat64(PhotosLoaded), 180},
		{"ThumbnailQueueLength", testutil.ToFloat64(ThumbnailQueueLength), 7},
		{"SectionFetchInFlight", testutil.ToFloat64(SectionFetchInFlight), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if db.calls.Load() != 1 {
		t.Errorf("UpdateDBMetrics called %d times, want 1", db.calls.Load())
	}
}

func TestCollectorNilProviders(t *testing.T) {
	c := NewCollector(nil, nil, time.Hour)
	// Should not panic
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{}
	c := NewCollector(provider, nil, 10*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()
	c.Stop()

	if provider.calls.Load() < 2 {
		t.Errorf("GetStats called %d times, want at least 2", provider.calls.Load())
	}
}
