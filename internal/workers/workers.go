package workers

import (
	"os"
	"runtime"
	"strconv"

	"photo-grid/internal/logging"
)

// VipsConcurrencyEnv overrides the number of libvips worker threads.
const VipsConcurrencyEnv = "VIPS_CONCURRENCY"

// Count returns a thread count for a workload, scaled from GOMAXPROCS,
// which Go sets from the container CPU limit.
//
// An override read from the envVar environment variable wins over the
// calculation; invalid or non-positive values are ignored. limit caps the
// result; 0 means no cap. The result is never below 1.
func Count(envVar string, multiplier float64, limit int) int {
	if envVar != "" {
		if override := os.Getenv(envVar); override != "" {
			count, err := strconv.Atoi(override)
			if err == nil && count > 0 {
				if limit > 0 && count > limit {
					return limit
				}
				return count
			}
			logging.Warn("Invalid value for %s: %q, using automatic count", envVar, override)
		}
	}

	available := runtime.GOMAXPROCS(0)
	count := int(float64(available) * multiplier)

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}
	return count
}

// ForIO returns a worker count for I/O-bound tasks (2 per CPU), overridable
// through envVar.
func ForIO(envVar string, limit int) int {
	return Count(envVar, 2.0, limit)
}

// VipsConcurrency returns the number of threads libvips may use to decode
// a single master.
func VipsConcurrency(limit int) int {
	return Count(VipsConcurrencyEnv, 1.0, limit)
}
