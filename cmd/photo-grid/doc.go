// Package main provides the entry point for the photo grid service.
//
// The service hosts one justified photo grid over a SQLite photo library
// and exposes it over HTTP: clients report their viewport and receive the
// layout, and request thumbnails that are rendered most-visible first.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Sets GOMEMLIMIT from the container limit, reads
//     environment variables and validates directories
//  2. Database Initialization: Opens the SQLite photo library and, when
//     IMPORT_DIR is set, imports it and keeps watching it for changes
//  3. Component Initialization:
//     - libvips, sized by VIPS_CONCURRENCY
//     - Thumbnail renderer writing to CACHE_DIR/thumbnails
//     - Grid controller: store, layout engine, section lifecycle, thumbnail queue
//     - Metrics Collector: Refreshes grid and database gauges
//  4. HTTP Server Setup: Configures routes and middleware and starts the server
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM and stops all components
package main
