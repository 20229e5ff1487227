package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photo-grid/internal/database"
	"photo-grid/internal/layout"
	"photo-grid/internal/photo"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "photos.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTestDB(t *testing.T, count, days int) *database.Database {
	t.Helper()
	db := setupTestDB(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	if err := seedPhotos(context.Background(), db, count, days, now); err != nil {
		t.Fatalf("seedPhotos() error: %v", err)
	}
	return db
}

func TestSanitizeCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "simulate", expected: "simulate"},
		{name: "hyphen and underscore", input: "a-b_c", expected: "a-b_c"},
		{name: "newline injection", input: "x\nERROR fake", expected: "x_ERROR_fake"},
		{name: "escape sequence", input: "\x1b[31mred", expected: "_[31mred"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeCommand(tt.input); got != tt.expected {
				t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPositiveArg(t *testing.T) {
	t.Parallel()

	if n, err := positiveArg("12", "count"); err != nil || n != 12 {
		t.Errorf("positiveArg(12) = %d, %v", n, err)
	}
	for _, bad := range []string{"0", "-3", "ten", ""} {
		if _, err := positiveArg(bad, "count"); err == nil {
			t.Errorf("positiveArg(%q) expected error", bad)
		}
	}
}

func TestParseUntil(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2019-06-30", "2019/06/30", "June 30, 2019"} {
		got, err := parseUntil(in)
		if err != nil {
			t.Errorf("parseUntil(%q) error: %v", in, err)
			continue
		}
		if got.Format(time.DateOnly) != "2019-06-30" {
			t.Errorf("parseUntil(%q) = %v", in, got)
		}
	}
	if _, err := parseUntil("someday"); err == nil {
		t.Error("parseUntil(someday) expected error")
	}
}

func TestSeedAndListSections(t *testing.T) {
	t.Parallel()

	db := seedTestDB(t, 50, 5)

	count, err := db.CountPhotos(context.Background())
	if err != nil {
		t.Fatalf("CountPhotos() error: %v", err)
	}
	if count != 50 {
		t.Errorf("CountPhotos() = %d, want 50", count)
	}

	sections, err := db.ListSections(context.Background(), photo.DefaultFilter())
	if err != nil {
		t.Fatalf("ListSections() error: %v", err)
	}
	if len(sections) == 0 || len(sections) > 6 {
		t.Errorf("got %d sections for 5 days", len(sections))
	}

	var buf bytes.Buffer
	if err := listSections(context.Background(), db, &buf); err != nil {
		t.Fatalf("listSections() error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "SECTION") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, string(sections[0].ID)) {
		t.Errorf("missing section %s in %q", sections[0].ID, out)
	}
	if !strings.Contains(out, "50") {
		t.Errorf("missing total in %q", out)
	}
}

func TestListSectionsShowsLastImport(t *testing.T) {
	t.Parallel()

	db := seedTestDB(t, 10, 2)
	if err := db.SetLastImport(context.Background(), time.Date(2024, 6, 30, 12, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("SetLastImport() error: %v", err)
	}

	var buf bytes.Buffer
	if err := listSections(context.Background(), db, &buf); err != nil {
		t.Fatalf("listSections() error: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "Last import: 2024-06-30 12:00:00\n") {
		t.Errorf("output %q does not end with the last import", buf.String())
	}
}

func TestListSectionsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := listSections(context.Background(), setupTestDB(t), &buf); err != nil {
		t.Fatalf("listSections() error: %v", err)
	}
	if buf.String() != "No sections\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestMinimapLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		height    float64
		maxHeight float64
		loaded    bool
		width     int
		bar       string
	}{
		{name: "full loaded", height: 100, maxHeight: 100, loaded: true, width: 31, bar: strings.Repeat("#", 10)},
		{name: "half estimated", height: 50, maxHeight: 100, width: 31, bar: strings.Repeat(".", 5)},
		{name: "tiny keeps one cell", height: 1, maxHeight: 1000, loaded: true, width: 31, bar: "#"},
		{name: "narrow terminal", height: 100, maxHeight: 100, loaded: true, width: 5, bar: "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			line := minimapLine("June 1, 2024", tt.height, tt.maxHeight, tt.loaded, tt.width)
			if !strings.HasPrefix(line, "June 1, 2024") {
				t.Errorf("line %q missing label", line)
			}
			if bar := line[21:]; bar != tt.bar {
				t.Errorf("bar = %q, want %q", bar, tt.bar)
			}
		})
	}
}

func TestDiffSections(t *testing.T) {
	t.Parallel()

	prev := map[photo.SectionID]bool{"a": true, "b": true}
	next := map[photo.SectionID]bool{"b": true, "d": true, "c": true}
	added, removed := diffSections(prev, next)

	if joinIDs(added) != "c,d" {
		t.Errorf("added = %v, want [c d]", added)
	}
	if joinIDs(removed) != "a" {
		t.Errorf("removed = %v, want [a]", removed)
	}
	if joinIDs(nil) != "-" {
		t.Errorf("joinIDs(nil) = %q, want -", joinIDs(nil))
	}
}

func TestSimulate(t *testing.T) {
	t.Parallel()

	db := seedTestDB(t, 300, 30)
	vp := layout.Viewport{Width: 1000, Height: 600}

	var buf bytes.Buffer
	if err := simulate(context.Background(), db, vp, 4, &buf); err != nil {
		t.Fatalf("simulate() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "step   0") {
		t.Errorf("first line = %q", lines[0])
	}
	if strings.Contains(lines[0], "loaded   0") {
		t.Errorf("nothing loaded at the top: %q", lines[0])
	}
}

func TestMinimap(t *testing.T) {
	t.Parallel()

	db := seedTestDB(t, 120, 10)
	sections, err := db.ListSections(context.Background(), photo.DefaultFilter())
	if err != nil {
		t.Fatalf("ListSections() error: %v", err)
	}

	var buf bytes.Buffer
	if err := minimap(context.Background(), db, layout.Viewport{Width: 800, Height: 600}, 60, &buf); err != nil {
		t.Fatalf("minimap() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(sections)+1 {
		t.Fatalf("got %d lines for %d sections and a legend", len(lines), len(sections))
	}
	if !strings.Contains(lines[0], "loaded") {
		t.Errorf("missing legend: %q", lines[0])
	}
	if !strings.Contains(lines[1], "#") {
		t.Errorf("first section not loaded: %q", lines[1])
	}
}
