package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"photo-grid/internal/database"
	"photo-grid/internal/layout"
	"photo-grid/internal/library"
	"photo-grid/internal/photo"
	"photo-grid/internal/profiler"
	"photo-grid/internal/thumbnail"

	"golang.org/x/term"
)

const (
	defaultTerminalWidth = 80
	settleTimeout        = 10 * time.Second
	settlePoll           = 5 * time.Millisecond
)

var errRenderingDisabled = errors.New("rendering is disabled in the simulator")

// noRenderer satisfies thumbnail.Renderer for runs that never request
// thumbnails.
type noRenderer struct{}

func (noRenderer) Render(context.Context, *photo.Photo, *profiler.Profiler) (thumbnail.Size, error) {
	return thumbnail.Size{}, errRenderingDisabled
}

func (noRenderer) ThumbnailPath(*photo.Photo) string {
	return ""
}

func viewportFromEnv() layout.Viewport {
	return layout.Viewport{
		Width:  float64(envInt("VIEWPORT_WIDTH", defaultViewportWidth)),
		Height: float64(envInt("VIEWPORT_HEIGHT", defaultViewportHeight)),
	}
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// openGrid starts a controller over db with the section list loaded.
func openGrid(ctx context.Context, db *database.Database) (*library.Controller, library.Config, error) {
	cfg := library.DefaultConfig()
	grid := library.New(cfg, db, noRenderer{})
	if err := grid.LoadSections(ctx); err != nil {
		grid.Close()
		return nil, cfg, err
	}
	return grid, cfg, nil
}

// settle re-runs layout passes until no section fetch is running and the
// set of loaded sections has stopped changing.
func settle(ctx context.Context, grid *library.Controller) (*layout.GridLayout, error) {
	deadline := time.Now().Add(settleTimeout)
	stable := 0
	last := -1
	for {
		gl, err := grid.Layout()
		if err != nil {
			return nil, err
		}
		stats := grid.GetStats()
		if !stats.FetchInFlight && stats.LoadedSections == last {
			stable++
			if stable >= 3 {
				return gl, nil
			}
		} else {
			stable = 0
		}
		last = stats.LoadedSections
		if time.Now().After(deadline) {
			return gl, fmt.Errorf("grid did not settle within %v", settleTimeout)
		}
		select {
		case <-ctx.Done():
			return gl, ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}

func gridHeight(gl *layout.GridLayout, headHeight float64) float64 {
	if gl == nil || len(gl.SectionLayouts) == 0 {
		return 0
	}
	last := gl.SectionLayouts[len(gl.SectionLayouts)-1]
	return last.SectionTop + headHeight + last.ContainerHeight
}

func loadedSections(grid *library.Controller) map[photo.SectionID]bool {
	state := grid.Store().GetState()
	loaded := make(map[photo.SectionID]bool)
	for id, sec := range state.SectionsByID {
		if sec.IsLoaded() {
			loaded[id] = true
		}
	}
	return loaded
}

// diffSections returns the ids present only in next and only in prev.
func diffSections(prev, next map[photo.SectionID]bool) (added, removed []photo.SectionID) {
	for id := range next {
		if !prev[id] {
			added = append(added, id)
		}
	}
	for id := range prev {
		if !next[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}

func joinIDs(ids []photo.SectionID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// simulate scrolls vp from the top of the grid to the bottom in steps and
// reports the sections loaded and evicted after each step.
func simulate(ctx context.Context, db *database.Database, vp layout.Viewport, steps int, w io.Writer) error {
	grid, cfg, err := openGrid(ctx, db)
	if err != nil {
		return err
	}
	defer grid.Close()

	if len(grid.Store().GetState().SectionIDs) == 0 {
		_, err := fmt.Fprintln(w, "No sections")
		return err
	}

	if _, err := grid.UpdateViewport(vp); err != nil {
		return err
	}
	gl, err := settle(ctx, grid)
	if err != nil {
		return err
	}

	prev := map[photo.SectionID]bool{}
	for step := 0; step <= steps; step++ {
		maxTop := math.Max(0, gridHeight(gl, cfg.Layout.SectionHeadHeight)-vp.Height)
		vp.ScrollTop = math.Round(maxTop * float64(step) / float64(steps))
		if _, err := grid.UpdateViewport(vp); err != nil {
			return err
		}
		gl, err = settle(ctx, grid)
		if err != nil {
			return err
		}

		next := loadedSections(grid)
		added, removed := diffSections(prev, next)
		stats := grid.GetStats()
		fmt.Fprintf(w, "step %3d  top %8.0f / %8.0f  sections %d-%d  loaded %3d (%5d photos)  +%s  -%s\n",
			step, vp.ScrollTop, gridHeight(gl, cfg.Layout.SectionHeadHeight),
			gl.FromSectionIndex, gl.ToSectionIndex, stats.LoadedSections, stats.LoadedPhotos,
			joinIDs(added), joinIDs(removed))
		prev = next
	}
	return nil
}

// minimapLine renders one section as a label followed by a bar whose
// length is proportional to height. Loaded sections use '#', estimated
// ones '.'.
func minimapLine(label string, height, maxHeight float64, loaded bool, width int) string {
	const labelWidth = 20
	barWidth := width - labelWidth - 1
	if barWidth < 1 {
		barWidth = 1
	}
	if len(label) > labelWidth {
		label = label[:labelWidth]
	}

	n := 0
	if maxHeight > 0 {
		n = int(math.Round(height / maxHeight * float64(barWidth)))
	}
	if n < 1 && height > 0 {
		n = 1
	}
	if n > barWidth {
		n = barWidth
	}
	fill := "."
	if loaded {
		fill = "#"
	}
	return fmt.Sprintf("%-*s %s", labelWidth, label, strings.Repeat(fill, n))
}

// minimap lays out the top of the grid and draws every section's height.
func minimap(ctx context.Context, db *database.Database, vp layout.Viewport, width int, w io.Writer) error {
	grid, _, err := openGrid(ctx, db)
	if err != nil {
		return err
	}
	defer grid.Close()

	state := grid.Store().GetState()
	if len(state.SectionIDs) == 0 {
		_, err := fmt.Fprintln(w, "No sections")
		return err
	}
	if _, err := grid.UpdateViewport(vp); err != nil {
		return err
	}
	gl, err := settle(ctx, grid)
	if err != nil {
		return err
	}

	legend := fmt.Sprintf("%s loaded  %s estimated", loadedStyle.Render("#"), estimatedStyle.Render("."))
	if _, err := fmt.Fprintln(w, legendStyle.Render("Sections")+"  "+legend); err != nil {
		return err
	}

	state = grid.Store().GetState()
	maxHeight := 0.0
	for _, sl := range gl.SectionLayouts {
		maxHeight = math.Max(maxHeight, sl.ContainerHeight)
	}
	for i, sl := range gl.SectionLayouts {
		sec := state.Section(state.SectionIDs[i])
		style := estimatedStyle
		if sec.IsLoaded() {
			style = loadedStyle
		}
		line := minimapLine(sec.Title, sl.ContainerHeight, maxHeight, sec.IsLoaded(), width)
		if _, err := fmt.Fprintln(w, style.Render(line)); err != nil {
			return err
		}
	}
	return nil
}
