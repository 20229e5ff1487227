// Package memory sets the Go runtime memory limit from the container limit.
//
// In Kubernetes the container limit is passed in through the Downward API
// as MEMORY_LIMIT. ConfigureFromEnv sets GOMEMLIMIT to MEMORY_RATIO of it
// (default 0.85), leaving the remainder for libvips, which allocates
// outside the Go heap. An explicit GOMEMLIMIT always wins.
package memory
