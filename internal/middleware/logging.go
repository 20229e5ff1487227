package middleware

import (
	"net/http"
	"strings"
	"time"

	"photo-grid/internal/logging"
)

var log = logging.For("http")

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	SkipPaths       []string
	LogHealthChecks bool
	// SlowRequest marks requests taking longer than this with a warning.
	SlowRequest time.Duration
}

// DefaultLoggingConfig returns the default logging configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:       []string{"/metrics"},
		LogHealthChecks: true,
		SlowRequest:     5 * time.Second,
	}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// sanitizeLogField removes control characters that could be used for log
// injection: newlines become spaces, NUL, ESC and other control characters
// except tab are dropped.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Logger returns middleware logging one line per request. Successful
// requests are logged at debug level, client errors at info, server errors
// and slow requests at warn.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkip(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			logRequest(r, rec, time.Since(start), config.SlowRequest)
		})
	}
}

func logRequest(r *http.Request, rec *statusRecorder, duration time.Duration, slow time.Duration) {
	uri := sanitizeLogField(r.URL.Path)
	if r.URL.RawQuery != "" {
		uri += "?" + sanitizeLogField(r.URL.RawQuery)
	}
	const format = "%s %s %s %d %dB %v"
	args := []interface{}{
		sanitizeLogField(getClientIP(r)),
		sanitizeLogField(r.Method),
		uri,
		rec.statusCode,
		rec.bytesWritten,
		duration.Round(time.Microsecond),
	}

	switch {
	case rec.statusCode >= 500:
		log.Warn(format, args...)
	case slow > 0 && duration > slow:
		log.Warn(format+" (slow)", args...)
	case rec.statusCode >= 400:
		log.Info(format, args...)
	default:
		log.Debug(format, args...)
	}
}

func shouldSkip(path string, config LoggingConfig) bool {
	for _, skipPath := range config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return !config.LogHealthChecks && healthCheckPaths[path]
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
