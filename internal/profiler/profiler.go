package profiler

import (
	"fmt"
	"strings"
	"time"

	"photo-grid/internal/logging"
)

type point struct {
	label string
	at    time.Time
}

// Profiler collects timing points for one operation.
type Profiler struct {
	name   string
	start  time.Time
	points []point
	now    func() time.Time
}

// New starts a profiler.
func New(name string) *Profiler {
	return newWithClock(name, time.Now)
}

// NewIf returns a profiler when enabled is true and nil otherwise.
func NewIf(enabled bool, name string) *Profiler {
	if !enabled {
		return nil
	}
	return New(name)
}

func newWithClock(name string, now func() time.Time) *Profiler {
	return &Profiler{name: name, start: now(), now: now}
}

// AddPoint records the time elapsed since the previous point.
func (p *Profiler) AddPoint(label string) {
	if p == nil {
		return
	}
	p.points = append(p.points, point{label: label, at: p.now()})
}

// Total returns the time since the profiler was started.
func (p *Profiler) Total() time.Duration {
	if p == nil {
		return 0
	}
	return p.now().Sub(p.start)
}

// String formats the points as "name: a=1ms b=3ms (total 4ms)".
func (p *Profiler) String() string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(p.name)
	sb.WriteString(":")
	prev := p.start
	for _, pt := range p.points {
		fmt.Fprintf(&sb, " %s=%s", pt.label, pt.at.Sub(prev))
		prev = pt.at
	}
	fmt.Fprintf(&sb, " (total %s)", p.Total())
	return sb.String()
}

// LogResult writes the collected points at debug level.
func (p *Profiler) LogResult() {
	if p == nil {
		return
	}
	logging.Debug("profile %s", p.String())
}
