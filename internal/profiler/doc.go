// Package profiler records named timing points for a single operation and
// logs them as one debug line. A nil *Profiler is valid and records nothing,
// so callers can pass one around unconditionally.
package profiler
