package library

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"photo-grid/internal/layout"
	"photo-grid/internal/lifecycle"
	"photo-grid/internal/logging"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
	"photo-grid/internal/store"
	"photo-grid/internal/thumbnail"
)

var log = logging.For("library")

var (
	// ErrNoViewport is returned when a layout is requested before the
	// first viewport was reported.
	ErrNoViewport = errors.New("no viewport reported yet")
	// ErrPhotoNotLoaded is returned for photos whose section is not
	// resident.
	ErrPhotoNotLoaded = errors.New("photo not loaded")
)

// DetailSource loads the extended record shown in the info panel.
type DetailSource interface {
	FetchPhotoDetail(ctx context.Context, id photo.PhotoID) (*photo.PhotoDetail, error)
}

// Catalog is the library backend the controller reads sections and photos
// from. *database.Database implements it.
type Catalog interface {
	lifecycle.SectionSource
	DetailSource
	ListSections(ctx context.Context, filter photo.Filter) ([]*photo.Section, error)
	UpdatePhotoMasterSize(ctx context.Context, id photo.PhotoID, width, height int) error
}

// DefaultRowHeight is the row height used when a viewport does not name
// one.
const DefaultRowHeight = 200

// Config configures a Controller.
type Config struct {
	Layout            layout.Config
	Lifecycle         lifecycle.Config
	RowHeight         float64
	ProfileThumbnails bool
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Layout:    layout.DefaultConfig(),
		Lifecycle: lifecycle.DefaultConfig(),
		RowHeight: DefaultRowHeight,
	}
}

// Controller drives one grid instance.
type Controller struct {
	rowHeight float64
	catalog   Catalog
	store     *store.Memory
	engine    *layout.Engine
	manager   *lifecycle.Manager
	scheduler *thumbnail.Scheduler

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	refresh     chan struct{}
	wg          sync.WaitGroup
	infoWG      sync.WaitGroup

	mu          sync.Mutex
	viewport    layout.Viewport
	hasViewport bool
	infoCancel  context.CancelFunc
	closed      bool
}

// New creates a controller and starts its background refresh loop. Close
// must be called to release it.
func New(cfg Config, catalog Catalog, renderer thumbnail.Renderer) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		rowHeight: cfg.RowHeight,
		catalog:   catalog,
		store:     store.NewMemory(store.NewState()),
		ctx:       ctx,
		cancel:    cancel,
		refresh:   make(chan struct{}, 1),
	}
	c.manager = lifecycle.NewManager(cfg.Lifecycle, catalog, c.store)
	c.engine = layout.NewEngine(cfg.Layout, c.manager)
	c.scheduler = thumbnail.NewScheduler(renderer, c.engine,
		thumbnail.WithProfiling(cfg.ProfileThumbnails),
		thumbnail.WithMasterSizeFunc(c.repairMasterSize),
	)
	c.unsubscribe = c.store.Subscribe(func(store.State) {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	})

	c.wg.Add(1)
	go c.refreshLoop()
	return c
}

// Store returns the controller's state container.
func (c *Controller) Store() *store.Memory {
	return c.store
}

// Engine returns the layout engine.
func (c *Controller) Engine() *layout.Engine {
	return c.engine
}

// LoadSections queries the section list for the current filter and
// replaces the store's sections with it.
func (c *Controller) LoadSections(ctx context.Context) error {
	filter := c.store.GetState().Filter
	sections, err := c.catalog.ListSections(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}
	log.Info("loaded %d sections (filter %s)", len(sections), filter.Mode)
	c.store.Dispatch(store.SetSections{Sections: sections})
	return nil
}

// SetFilter changes the filter and reloads the section list.
func (c *Controller) SetFilter(ctx context.Context, filter photo.Filter) error {
	if filter.Mode == "" {
		filter.Mode = photo.FilterAll
	}
	switch filter.Mode {
	case photo.FilterAll, photo.FilterFlagged, photo.FilterTrash:
	default:
		return fmt.Errorf("unknown filter mode %q", filter.Mode)
	}
	c.store.Dispatch(store.SetFilter{Filter: filter})
	return c.LoadSections(ctx)
}

// UpdateViewport runs a layout pass for vp and applies the evictions and
// fetch it implies. A zero RowHeight selects the configured default.
func (c *Controller) UpdateViewport(vp layout.Viewport) (*layout.GridLayout, error) {
	if vp.RowHeight == 0 {
		vp.RowHeight = c.rowHeight
	}
	if vp.Width <= 0 || vp.Height <= 0 || vp.RowHeight <= 0 {
		return nil, fmt.Errorf("invalid viewport %vx%v (row height %v)", vp.Width, vp.Height, vp.RowHeight)
	}
	c.mu.Lock()
	c.viewport = vp
	c.hasViewport = true
	c.mu.Unlock()

	return c.layout(vp), nil
}

// Layout runs a pass with the last reported viewport.
func (c *Controller) Layout() (*layout.GridLayout, error) {
	c.mu.Lock()
	vp, ok := c.viewport, c.hasViewport
	c.mu.Unlock()
	if !ok {
		return nil, ErrNoViewport
	}
	return c.layout(vp), nil
}

func (c *Controller) layout(vp layout.Viewport) *layout.GridLayout {
	state := c.store.GetState()
	gl, plan := c.engine.GetGridLayout(state.SectionIDs, state.SectionsByID, vp)
	if !plan.IsEmpty() {
		c.manager.Apply(c.ctx, plan)
	}
	return gl
}

func (c *Controller) refreshLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.refresh:
			if _, err := c.Layout(); err != nil && !errors.Is(err, ErrNoViewport) {
				log.Warn("background layout failed: %v", err)
			}
		}
	}
}

// Photo returns a resident photo.
func (c *Controller) Photo(sectionID photo.SectionID, photoID photo.PhotoID) (*photo.Photo, error) {
	sec := c.store.GetState().Section(sectionID)
	if sec == nil || !sec.IsLoaded() {
		return nil, fmt.Errorf("%w: section %s", ErrPhotoNotLoaded, sectionID)
	}
	p, ok := sec.PhotoData[photoID]
	if !ok {
		return nil, fmt.Errorf("%w: photo %d in section %s", ErrPhotoNotLoaded, photoID, sectionID)
	}
	return p, nil
}

// CreateThumbnail enqueues the thumbnail of a resident photo.
func (c *Controller) CreateThumbnail(sectionID photo.SectionID, photoID photo.PhotoID) (*thumbnail.Request, error) {
	p, err := c.Photo(sectionID, photoID)
	if err != nil {
		return nil, err
	}
	return c.scheduler.Enqueue(sectionID, p), nil
}

// SetInfoPhoto shows a photo in the info panel and loads its details. An
// empty sectionID clears the panel. Only the latest request is applied.
func (c *Controller) SetInfoPhoto(sectionID photo.SectionID, photoID photo.PhotoID) {
	c.mu.Lock()
	if c.infoCancel != nil {
		c.infoCancel()
		c.infoCancel = nil
	}
	c.store.Dispatch(store.SetInfoPhotoRequest{SectionID: sectionID, PhotoID: photoID})
	if sectionID == "" || photoID == 0 || c.closed {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.infoCancel = cancel
	c.infoWG.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.infoWG.Done()
		defer cancel()

		detail, err := c.catalog.FetchPhotoDetail(ctx, photoID)
		if ctx.Err() != nil {
			metrics.InfoPhotoRequestsTotal.WithLabelValues("canceled").Inc()
			return
		}
		if err != nil {
			metrics.InfoPhotoRequestsTotal.WithLabelValues("error").Inc()
			log.Error("loading details of photo %d failed: %v", photoID, err)
			c.store.Dispatch(store.SetInfoPhotoFailure{PhotoID: photoID, Err: err})
			return
		}
		metrics.InfoPhotoRequestsTotal.WithLabelValues("success").Inc()
		c.store.Dispatch(store.SetInfoPhotoSuccess{Detail: detail})
	}()
}

// SetSelection replaces the selection. All photos must belong to a known
// section.
func (c *Controller) SetSelection(sel store.Selection) error {
	if len(sel.PhotoIDs) > 0 && c.store.GetState().Section(sel.SectionID) == nil {
		return fmt.Errorf("unknown section %q", sel.SectionID)
	}
	if len(sel.PhotoIDs) == 0 {
		sel = store.Selection{}
	}
	c.store.Dispatch(store.SetSelection{Selection: sel})
	return nil
}

// OpenDetail opens the detail view on a resident photo.
func (c *Controller) OpenDetail(sectionID photo.SectionID, photoID photo.PhotoID) error {
	if _, err := c.Photo(sectionID, photoID); err != nil {
		return err
	}
	c.store.Dispatch(store.OpenDetail{SectionID: sectionID, PhotoID: photoID})
	return nil
}

// CloseDetail closes the detail view.
func (c *Controller) CloseDetail() {
	c.store.Dispatch(store.CloseDetail{})
}

// OpenExport opens the export dialog for photos of one section.
func (c *Controller) OpenExport(sectionID photo.SectionID, photoIDs []photo.PhotoID) error {
	if len(photoIDs) == 0 {
		return errors.New("no photos to export")
	}
	if c.store.GetState().Section(sectionID) == nil {
		return fmt.Errorf("unknown section %q", sectionID)
	}
	c.store.Dispatch(store.OpenExport{SectionID: sectionID, PhotoIDs: photoIDs})
	return nil
}

// CloseExport closes the export dialog.
func (c *Controller) CloseExport() {
	c.store.Dispatch(store.CloseExport{})
}

// repairMasterSize persists a master size discovered while rendering and
// updates the store so the next pass re-packs the section.
func (c *Controller) repairMasterSize(sectionID photo.SectionID, p *photo.Photo, size thumbnail.Size) {
	log.Debug("photo %d has master size %dx%d", p.ID, size.Width, size.Height)
	if err := c.catalog.UpdatePhotoMasterSize(c.ctx, p.ID, size.Width, size.Height); err != nil {
		log.Warn("storing master size of photo %d failed: %v", p.ID, err)
	}
	c.store.Dispatch(store.UpdatePhotoMasterSize{
		SectionID: sectionID,
		PhotoID:   p.ID,
		Width:     size.Width,
		Height:    size.Height,
	})
}

// GetStats implements metrics.StatsProvider.
func (c *Controller) GetStats() metrics.Stats {
	state := c.store.GetState()
	loadedSections, loadedPhotos := state.Loaded()
	return metrics.Stats{
		TotalSections:  len(state.SectionIDs),
		LoadedSections: loadedSections,
		LoadedPhotos:   loadedPhotos,
		QueuedJobs:     c.scheduler.Len(),
		FetchInFlight:  c.manager.Fetching(),
	}
}

// Wait blocks until the running section fetch and info request, if any,
// have finished.
func (c *Controller) Wait() {
	c.manager.Wait()
	c.infoWG.Wait()
}

// Close stops background work. Pending thumbnail requests resolve with
// jobqueue.ErrQueueClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.unsubscribe()
	c.cancel()
	c.scheduler.Close()
	c.wg.Wait()
	c.manager.Wait()
	c.infoWG.Wait()
}
