// Package thumbnail renders grid thumbnails in on-screen priority order.
//
// The Scheduler wraps a single-worker jobqueue.Queue. Jobs for the same photo
// are coalesced while pending, and every job's priority is recomputed from the
// latest layout snapshot when the worker picks its next job:
//
//	box not locatable        MinPriority
//	box below the viewport   viewportBottom - boxTop         (negative)
//	box above the viewport   boxBottom - viewportTop         (negative)
//	box on screen            (viewportBottom - boxTop) + (width - boxLeft) / width
//
// so visible boxes are rendered in reading order and off-screen boxes by
// distance.
//
// DiskRenderer is the default Renderer. It decodes masters with libvips when
// available and with imaging otherwise, scales them to a fixed height and
// caches the JPEG on disk.
package thumbnail
