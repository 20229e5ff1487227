/*
Package workers sizes thread pools in containerized environments.

runtime.NumCPU reports the host CPU count, while GOMAXPROCS follows the
container CPU limit (Go 1.19+). Counts are derived from GOMAXPROCS:

	// libvips decode threads, at most 4
	threads := workers.VipsConcurrency(4)

	// 2 per CPU, no maximum, overridable with MY_WORKERS
	n := workers.Count("MY_WORKERS", 2.0, 0)

# Environment Variable Override

VIPS_CONCURRENCY sets the libvips thread count directly:

	env:
	- name: VIPS_CONCURRENCY
	  value: "2"
*/
package workers
