// Package indexer imports a directory of images into the photo library.
//
// A ParallelWalker walks the tree and hands image files to a pool of
// workers that read each file's header for its dimensions. Import then
// upserts the photos in batches, one transaction per batch, keyed by the
// master's absolute path so that re-importing a tree updates rather than
// duplicates.
//
// Photos are dated by file modification time and land in the section of
// that day.
package indexer
