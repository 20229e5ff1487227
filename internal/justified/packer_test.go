package justified

import (
	"math"
	"testing"

	"photo-grid/internal/photo"
)

const epsilon = 1e-6

func rowRightEdge(boxes []Box, top float64) float64 {
	right := 0.0
	for _, b := range boxes {
		if math.Abs(b.Top-top) < epsilon {
			right = math.Max(right, b.Left+b.Width)
		}
	}
	return right
}

func TestPackFillsSingleRowExactly(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	const (
		width     = 1000.0
		rowHeight = 200.0
	)

	for _, n := range []int{1, 2, 3, 5, 8} {
		available := width - 2*p.ContainerPadding - float64(n-1)*p.BoxSpacing
		ar := available / (float64(n) * rowHeight)
		aspects := make([]float64, n)
		for i := range aspects {
			aspects[i] = ar
		}

		got := p.Pack(aspects, width, rowHeight)

		if len(got.Boxes) != n {
			t.Fatalf("n=%d: got %d boxes", n, len(got.Boxes))
		}
		for i, b := range got.Boxes {
			if math.Abs(b.Top-p.ContainerPadding) > epsilon {
				t.Errorf("n=%d: box %d top = %v, want single row at %v", n, i, b.Top, p.ContainerPadding)
			}
		}
		right := rowRightEdge(got.Boxes, p.ContainerPadding) + p.ContainerPadding
		if math.Abs(right-width) > 0.5 {
			t.Errorf("n=%d: row right edge = %v, want %v", n, right, width)
		}
		wantHeight := math.Round(rowHeight + 2*p.ContainerPadding)
		if got.ContainerHeight != wantHeight {
			t.Errorf("n=%d: container height = %v, want %v", n, got.ContainerHeight, wantHeight)
		}
	}
}

func TestPackJustifiesFullRows(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	aspects := []float64{1.5, 1.5, 1.5, 1.5, 1.5, 0.66, 1, 1.5}
	const width = 800.0

	got := p.Pack(aspects, width, 200)
	if len(got.Boxes) != len(aspects) {
		t.Fatalf("got %d boxes, want %d", len(got.Boxes), len(aspects))
	}

	// Every row except the last one must reach the right padding.
	tops := map[float64]bool{}
	for _, b := range got.Boxes {
		tops[b.Top] = true
	}
	lastTop := got.Boxes[len(got.Boxes)-1].Top
	for top := range tops {
		if top == lastTop {
			continue
		}
		right := rowRightEdge(got.Boxes, top)
		if math.Abs(right-(width-p.ContainerPadding)) > epsilon {
			t.Errorf("row at %v ends at %v, want %v", top, right, width-p.ContainerPadding)
		}
	}

	for i, b := range got.Boxes {
		if math.Abs(b.Width/b.Height-aspects[i]) > epsilon {
			t.Errorf("box %d aspect = %v, want %v", i, b.Width/b.Height, aspects[i])
		}
	}

	// Last row keeps the target height.
	if last := got.Boxes[len(got.Boxes)-1]; math.Abs(last.Height-200) > epsilon {
		t.Errorf("last row height = %v, want 200", last.Height)
	}

	if got.ContainerHeight != math.Round(got.ContainerHeight) {
		t.Errorf("container height %v is not a whole pixel", got.ContainerHeight)
	}
}

func TestPackOversizedPhotoIsScaledDown(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	got := p.Pack([]float64{10}, 500, 200)
	if len(got.Boxes) != 1 {
		t.Fatalf("got %d boxes", len(got.Boxes))
	}
	b := got.Boxes[0]
	if math.Abs(b.Width-(500-2*p.ContainerPadding)) > epsilon {
		t.Errorf("width = %v, want %v", b.Width, 500-2*p.ContainerPadding)
	}
	if b.Height >= 200 {
		t.Errorf("height = %v, want < 200", b.Height)
	}
}

func TestPackWithoutRoomStacksPhotos(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	aspects := []float64{1.5, 0.75, 1.5}

	for _, width := range []float64{0, 15, 2 * DefaultContainerPadding} {
		got := p.Pack(aspects, width, 200)
		if len(got.Boxes) != len(aspects) {
			t.Fatalf("width %v: got %d boxes, want %d", width, len(got.Boxes), len(aspects))
		}
		for i, b := range got.Boxes {
			if b.Width <= 0 || b.Height != 200 {
				t.Errorf("width %v: box %d = %+v, want positive width and height 200", width, i, b)
			}
			if want := DefaultContainerPadding + float64(i)*(200+DefaultBoxSpacing); b.Top != want {
				t.Errorf("width %v: box %d top = %v, want %v", width, i, b.Top, want)
			}
		}
		if want := p.EstimateContainerHeight(0, 200, len(aspects)); got.ContainerHeight != want {
			t.Errorf("width %v: ContainerHeight = %v, want %v", width, got.ContainerHeight, want)
		}
	}
}

func TestPackEmpty(t *testing.T) {
	t.Parallel()

	got := NewPacker().Pack(nil, 800, 200)
	if len(got.Boxes) != 0 || got.ContainerHeight != 0 {
		t.Errorf("Pack(nil) = %+v, want empty layout", got)
	}
}

func TestPackPhotosUsesDefaultAspectForUnknownSize(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	photos := []*photo.Photo{
		{ID: 1, MasterWidth: 400, MasterHeight: 400},
		{ID: 2},
	}
	got := p.PackPhotos(photos, 2000, 100)
	if math.Abs(got.Boxes[0].AspectRatio-1) > epsilon {
		t.Errorf("box 0 aspect = %v, want 1", got.Boxes[0].AspectRatio)
	}
	if math.Abs(got.Boxes[1].AspectRatio-DefaultAspectRatio) > epsilon {
		t.Errorf("box 1 aspect = %v, want %v", got.Boxes[1].AspectRatio, DefaultAspectRatio)
	}
}

func TestEstimateContainerHeight(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	tests := []struct {
		name      string
		width     float64
		rowHeight float64
		count     int
		want      float64
	}{
		{name: "unknown width stacks rows", width: 0, rowHeight: 200, count: 3, want: 10 + 3*210},
		{name: "one row", width: 800, rowHeight: 200, count: 2, want: 200 + 2*10},
		{name: "several rows", width: 800, rowHeight: 200, count: 10, want: 4*200 + 5*10},
		{name: "empty section", width: 800, rowHeight: 200, count: 0, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.EstimateContainerHeight(tt.width, tt.rowHeight, tt.count); got != tt.want {
				t.Errorf("EstimateContainerHeight(%v, %v, %d) = %v, want %v", tt.width, tt.rowHeight, tt.count, got, tt.want)
			}
		})
	}
}

func TestDummyBoxesInvertEstimate(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	for _, width := range []float64{0, 320, 800, 1920} {
		for _, rowHeight := range []float64{100, 200, 333} {
			for _, count := range []int{1, 2, 7, 10, 31, 250} {
				height := p.EstimateContainerHeight(width, rowHeight, count)

				var wantRows int
				if width == 0 {
					wantRows = count
				} else {
					wantRows = int(math.Ceil(p.DefaultAspectRatio * float64(count) * rowHeight / width))
				}
				if got := p.RowCountForHeight(rowHeight, height); got != wantRows {
					t.Errorf("w=%v h=%v n=%d: row count = %d, want %d", width, rowHeight, count, got, wantRows)
				}

				boxes := p.DummyBoxes(width, rowHeight, height, count)
				if len(boxes) != count {
					t.Errorf("w=%v h=%v n=%d: got %d boxes", width, rowHeight, count, len(boxes))
				}
			}
		}
	}
}

func TestDummyBoxesCapLastRow(t *testing.T) {
	t.Parallel()

	p := NewPacker()
	// Two rows, three photos: the last row holds one box that must not stretch.
	height := 2*200 + 3*p.BoxSpacing
	boxes := p.DummyBoxes(1000, 200, height, 3)
	if len(boxes) != 3 {
		t.Fatalf("got %d boxes", len(boxes))
	}
	last := boxes[2]
	if last.Width > p.DefaultAspectRatio*200+epsilon {
		t.Errorf("last row box width = %v, want <= %v", last.Width, p.DefaultAspectRatio*200)
	}
	if last.Top != p.BoxSpacing+200+p.BoxSpacing {
		t.Errorf("last box top = %v", last.Top)
	}
	if boxes[0].Left != p.BoxSpacing {
		t.Errorf("first box left = %v, want %v", boxes[0].Left, p.BoxSpacing)
	}
}

func TestDummyBoxesEmpty(t *testing.T) {
	t.Parallel()

	if got := NewPacker().DummyBoxes(800, 200, 10, 0); len(got) != 0 {
		t.Errorf("got %d boxes, want 0", len(got))
	}
}
