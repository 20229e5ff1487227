package thumbnail

import (
	"context"
	"fmt"

	"photo-grid/internal/jobqueue"
	"photo-grid/internal/layout"
	"photo-grid/internal/logging"
	"photo-grid/internal/metrics"
	"photo-grid/internal/photo"
	"photo-grid/internal/profiler"
)

var log = logging.For("thumbnail")

// Size is the size of a decoded master image.
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are known.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Renderer writes thumbnails to disk.
type Renderer interface {
	// Render creates the thumbnail of p unless it exists. It returns the
	// master size when the master had to be decoded, or a zero Size.
	Render(ctx context.Context, p *photo.Photo, prof *profiler.Profiler) (Size, error)
	// ThumbnailPath returns where the thumbnail of p is stored.
	ThumbnailPath(p *photo.Photo) string
}

// SnapshotSource provides the layout state priorities are computed from.
type SnapshotSource interface {
	Snapshot() *layout.Snapshot
}

// MasterSizeFunc receives master sizes discovered for photos that had none.
type MasterSizeFunc func(sectionID photo.SectionID, p *photo.Photo, size Size)

// Job is one pending thumbnail render.
type Job struct {
	SectionID photo.SectionID
	Photo     *photo.Photo
	Profiler  *profiler.Profiler
}

// Scheduler renders thumbnails one at a time, most relevant first.
type Scheduler struct {
	renderer     Renderer
	snapshots    SnapshotSource
	profile      bool
	onMasterSize MasterSizeFunc
	queue        *jobqueue.Queue[*Job]
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithProfiling attaches a profiler to every job.
func WithProfiling(enabled bool) Option {
	return func(s *Scheduler) { s.profile = enabled }
}

// WithMasterSizeFunc registers a callback for discovered master sizes.
func WithMasterSizeFunc(fn MasterSizeFunc) Option {
	return func(s *Scheduler) { s.onMasterSize = fn }
}

// NewScheduler starts a scheduler rendering with renderer.
func NewScheduler(renderer Renderer, snapshots SnapshotSource, opts ...Option) *Scheduler {
	s := &Scheduler{
		renderer:  renderer,
		snapshots: snapshots,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = jobqueue.New[*Job](policy{snapshots: snapshots}, s.run)
	return s
}

// Request is a pending thumbnail.
type Request struct {
	ticket *jobqueue.Ticket
	path   string
}

// Wait returns the thumbnail path once it has been rendered.
func (r *Request) Wait(ctx context.Context) (string, error) {
	if err := r.ticket.Wait(ctx); err != nil {
		return "", err
	}
	return r.path, nil
}

// Cancel withdraws the request. A job nobody waits for any more is skipped.
func (r *Request) Cancel() {
	select {
	case <-r.ticket.Done():
		return
	default:
	}
	r.ticket.Cancel()
	metrics.ThumbnailJobsTotal.WithLabelValues("canceled").Inc()
}

// Enqueue requests the thumbnail of p, shown in section sectionID.
func (s *Scheduler) Enqueue(sectionID photo.SectionID, p *photo.Photo) *Request {
	job := &Job{
		SectionID: sectionID,
		Photo:     p,
		Profiler:  profiler.NewIf(s.profile, fmt.Sprintf("thumbnail %d", p.ID)),
	}
	t := s.queue.Submit(job)
	if t.Coalesced() {
		metrics.ThumbnailJobsTotal.WithLabelValues("coalesced").Inc()
	}
	metrics.ThumbnailQueueLength.Set(float64(s.queue.Len()))
	return &Request{ticket: t, path: s.renderer.ThumbnailPath(p)}
}

// Len returns the number of pending jobs.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Close stops the worker.
func (s *Scheduler) Close() {
	s.queue.Close()
}

func (s *Scheduler) run(ctx context.Context, job *Job) error {
	metrics.ThumbnailQueueLength.Set(float64(s.queue.Len()))
	if err := ctx.Err(); err != nil {
		return err
	}

	job.Profiler.AddPoint("waited")
	size, err := s.renderer.Render(ctx, job.Photo, job.Profiler)
	if err != nil {
		if jobqueue.IsCanceled(err) {
			metrics.ThumbnailJobsTotal.WithLabelValues("canceled").Inc()
			return err
		}
		metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
		log.Warn("rendering thumbnail of photo %d failed: %v", job.Photo.ID, err)
		return fmt.Errorf("render thumbnail of photo %d: %w", job.Photo.ID, err)
	}
	metrics.ThumbnailJobsTotal.WithLabelValues("rendered").Inc()
	job.Profiler.LogResult()

	if s.onMasterSize != nil && size.Valid() && !job.Photo.HasMasterSize() {
		s.onMasterSize(job.SectionID, job.Photo, size)
	}
	return nil
}

// policy coalesces jobs per photo and ranks them by on-screen position.
type policy struct {
	snapshots SnapshotSource
}

func (p policy) Coalesce(newJob, existing *Job) (*Job, bool) {
	if newJob.Photo.ID != existing.Photo.ID {
		return nil, false
	}
	return newJob, true
}

func (p policy) Priority(job *Job) float64 {
	return Priority(p.snapshots.Snapshot(), job.SectionID, job.Photo.ID)
}
