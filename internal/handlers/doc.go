// Package handlers exposes a photo grid over HTTP.
//
// It includes handlers for:
//   - The section list and resident section photos
//   - Viewport updates returning the grid layout
//   - Thumbnails rendered through the priority queue
//   - Info panel, selection, detail view, export dialog and filter state
//   - Tags
//   - Health checks, version and Prometheus metrics
package handlers
