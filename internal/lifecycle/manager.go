package lifecycle

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"photo-grid/internal/logging"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
	"photo-grid/internal/store"
)

var log = logging.For("lifecycle")

// Default window sizes, in viewport heights.
const (
	DefaultPagesToKeep    = 4
	DefaultPagesToPreload = 3
)

// SectionSource loads the photos of one section.
type SectionSource interface {
	FetchSectionPhotos(ctx context.Context, id photo.SectionID, filter photo.Filter) ([]*photo.Photo, error)
}

// Config holds the window sizes.
type Config struct {
	PagesToKeep    int
	PagesToPreload int
}

// DefaultConfig returns the default window sizes.
func DefaultConfig() Config {
	return Config{
		PagesToKeep:    DefaultPagesToKeep,
		PagesToPreload: DefaultPagesToPreload,
	}
}

// Manager plans and applies section evictions and fetches for one grid.
type Manager struct {
	cfg    Config
	source SectionSource
	store  store.Store

	fetching atomic.Bool
	wg       sync.WaitGroup

	// failed maps sections whose last fetch failed to their revision at
	// the time. They are not fetched again until revised.
	mu     sync.Mutex
	failed map[photo.SectionID]uint64
}

// NewManager creates a manager. Protected sections are read from st.
func NewManager(cfg Config, source SectionSource, st store.Store) *Manager {
	return &Manager{
		cfg:    cfg,
		source: source,
		store:  st,
		failed: map[photo.SectionID]uint64{},
	}
}

// Fetching reports whether a section fetch is in flight.
func (m *Manager) Fetching() bool {
	return m.fetching.Load()
}

// Plan decides which sections to forget and which one to fetch. It does not
// touch the store except to read protected sections, and only when at least
// one section is a candidate for eviction.
func (m *Manager) Plan(in Input) Plan {
	var plan Plan
	h := in.ViewportHeight
	top := in.ViewportTop

	keep := window{
		top:    top - float64(m.cfg.PagesToKeep)*h,
		bottom: top + float64(m.cfg.PagesToKeep+1)*h,
	}

	preload := window{top: top, bottom: top + float64(m.cfg.PagesToPreload+1)*h}
	if top < in.PrevViewportTop {
		preload = window{top: top - float64(m.cfg.PagesToPreload)*h, bottom: top + h}
	}
	viewport := window{top: top, bottom: top + h}

	var protected map[photo.SectionID]bool
	protectedLoaded := false

	canFetch := !m.fetching.Load()
	bestDistance := math.Inf(1)

	for _, e := range in.Extents {
		if e.Loaded {
			if keep.intersects(e) {
				continue
			}
			if !protectedLoaded {
				protected = m.store.GetState().ProtectedSections()
				protectedLoaded = true
			}
			if protected[e.SectionID] {
				continue
			}
			plan.Forget = append(plan.Forget, e.SectionID)
			continue
		}

		if !canFetch || !preload.intersects(e) || m.hasFailed(e) {
			continue
		}
		if d := distance(e, viewport); d < bestDistance {
			bestDistance = d
			plan.Fetch = e.SectionID
		}
	}

	return plan
}

func (m *Manager) hasFailed(e Extent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.failed[e.SectionID]
	return ok && rev == e.Revision
}

func (m *Manager) setFailed(id photo.SectionID, revision uint64, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failed {
		m.failed[id] = revision
	} else {
		delete(m.failed, id)
	}
}

// Apply dispatches the evictions of plan and starts its fetch unless another
// fetch is already running. The fetch runs in the background under ctx.
func (m *Manager) Apply(ctx context.Context, plan Plan) {
	if len(plan.Forget) > 0 {
		log.Debug("forgetting %d sections: %v", len(plan.Forget), plan.Forget)
		m.store.Dispatch(store.ForgetSectionPhotos{SectionIDs: plan.Forget})
		metrics.SectionsEvictedTotal.Add(float64(len(plan.Forget)))
	}

	if !plan.HasFetch() {
		return
	}
	if !m.fetching.CompareAndSwap(false, true) {
		log.Debug("fetch of %s skipped, another fetch is running", plan.Fetch)
		return
	}

	m.wg.Add(1)
	metrics.SectionFetchInFlight.Set(1)
	go m.fetch(ctx, plan.Fetch)
}

func (m *Manager) fetch(ctx context.Context, id photo.SectionID) {
	defer m.wg.Done()

	state := m.store.GetState()
	filter := state.Filter
	var revision uint64
	if sec := state.Section(id); sec != nil {
		revision = sec.Revision
	}

	start := time.Now()
	photos, err := m.source.FetchSectionPhotos(ctx, id, filter)
	metrics.SectionFetchDuration.Observe(time.Since(start).Seconds())

	// Clear the gate before dispatching; listeners may plan the next fetch.
	m.setFailed(id, revision, err != nil && ctx.Err() == nil)
	m.fetching.Store(false)
	metrics.SectionFetchInFlight.Set(0)

	if err != nil {
		metrics.SectionFetchesTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			log.Debug("fetch of section %s canceled", id)
			return
		}
		log.Error("fetching photos of section %s failed: %v", id, err)
		m.store.Dispatch(store.FetchSectionPhotosFailure{SectionID: id, Err: err})
		return
	}

	metrics.SectionFetchesTotal.WithLabelValues("success").Inc()
	log.Debug("fetched %d photos of section %s in %v", len(photos), id, time.Since(start))
	m.store.Dispatch(store.FetchSectionPhotosSuccess{
		SectionID: id,
		Revision:  revision,
		Filter:    filter,
		Photos:    photos,
	})
}

// Wait blocks until the running fetch, if any, has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
