// Package database provides SQLite storage for the photo library.
//
// It holds photos with their master dimensions and EXIF summary, tags,
// photo versions and a small metadata table. Sections are derived from the
// capture date: every distinct date with at least one matching photo forms
// one section, newest first.
//
// Database implements the section data source used by the grid engine
// (FetchSectionPhotos, FetchPhotoDetail) and persists master sizes
// discovered while rendering thumbnails.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
