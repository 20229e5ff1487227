package justified

import (
	"math"

	"photo-grid/internal/photo"
)

// Defaults match the gallery look of the library grid.
const (
	DefaultBoxSpacing         = 10.0
	DefaultContainerPadding   = 10.0
	DefaultAspectRatio        = 3.0 / 2.0
	rowOverflowTolerancePixel = 1e-6
)

// Box is one photo's rectangle, relative to the top of the section content.
type Box struct {
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`
}

// Bottom returns Top + Height.
func (b Box) Bottom() float64 {
	return b.Top + b.Height
}

// Layout is the packed geometry of one section.
type Layout struct {
	Boxes           []Box
	ContainerHeight float64
}

// Packer packs aspect ratios into justified rows.
type Packer struct {
	BoxSpacing         float64
	ContainerPadding   float64
	DefaultAspectRatio float64
}

// NewPacker returns a Packer using the default spacing and aspect ratio.
func NewPacker() Packer {
	return Packer{
		BoxSpacing:         DefaultBoxSpacing,
		ContainerPadding:   DefaultContainerPadding,
		DefaultAspectRatio: DefaultAspectRatio,
	}
}

// Pack fills rows greedily until the next photo would overflow the container
// width, then scales the finished row so it spans the width exactly. The last
// row keeps the target height unless it is wider than the container.
//
// A container with no room inside its padding, such as one of unknown (zero)
// width, gets one photo per row at the target height, matching
// EstimateContainerHeight for width 0.
func (p Packer) Pack(aspectRatios []float64, containerWidth, targetRowHeight float64) Layout {
	if len(aspectRatios) == 0 {
		return Layout{}
	}

	available := containerWidth - 2*p.ContainerPadding
	boxes := make([]Box, 0, len(aspectRatios))
	top := p.ContainerPadding

	if available <= 0 {
		for _, ar := range aspectRatios {
			boxes = append(boxes, Box{
				Left:        p.ContainerPadding,
				Top:         top,
				Width:       ar * targetRowHeight,
				Height:      targetRowHeight,
				AspectRatio: ar,
			})
			top += targetRowHeight + p.BoxSpacing
		}
		return Layout{
			Boxes:           boxes,
			ContainerHeight: math.Round(top - p.BoxSpacing + p.ContainerPadding),
		}
	}

	rowStart := 0
	rowNatural := 0.0
	for i, ar := range aspectRatios {
		w := ar * targetRowHeight
		count := i - rowStart
		if count > 0 && rowNatural+w+float64(count)*p.BoxSpacing > available+rowOverflowTolerancePixel {
			var rowHeight float64
			boxes, rowHeight = p.appendRow(boxes, aspectRatios[rowStart:i], rowNatural, available, targetRowHeight, top, true)
			top += rowHeight + p.BoxSpacing
			rowStart = i
			rowNatural = 0
		}
		rowNatural += w
	}

	last := aspectRatios[rowStart:]
	naturalWidth := rowNatural + float64(len(last)-1)*p.BoxSpacing
	var rowHeight float64
	boxes, rowHeight = p.appendRow(boxes, last, rowNatural, available, targetRowHeight, top, naturalWidth > available)

	return Layout{
		Boxes:           boxes,
		ContainerHeight: math.Round(top + rowHeight + p.ContainerPadding),
	}
}

// appendRow lays out one row starting at top. When justify is set the row is
// scaled to fill available exactly.
func (p Packer) appendRow(boxes []Box, row []float64, naturalWidth, available, targetRowHeight, top float64, justify bool) ([]Box, float64) {
	rowHeight := targetRowHeight
	if justify && naturalWidth > 0 {
		scale := (available - float64(len(row)-1)*p.BoxSpacing) / naturalWidth
		rowHeight = targetRowHeight * scale
	}

	left := p.ContainerPadding
	for _, ar := range row {
		w := ar * rowHeight
		boxes = append(boxes, Box{
			Left:        left,
			Top:         top,
			Width:       w,
			Height:      rowHeight,
			AspectRatio: ar,
		})
		left += w + p.BoxSpacing
	}
	return boxes, rowHeight
}

// PackPhotos packs loaded photos, using the default aspect ratio for photos
// whose master size is not known yet.
func (p Packer) PackPhotos(photos []*photo.Photo, containerWidth, targetRowHeight float64) Layout {
	aspects := make([]float64, len(photos))
	for i, ph := range photos {
		aspects[i] = ph.AspectRatio(p.DefaultAspectRatio)
	}
	return p.Pack(aspects, containerWidth, targetRowHeight)
}

// EstimateContainerHeight approximates the height of a section whose photos
// are not loaded, assuming every photo has the default aspect ratio.
func (p Packer) EstimateContainerHeight(containerWidth, rowHeight float64, photoCount int) float64 {
	if containerWidth == 0 {
		return p.BoxSpacing + float64(photoCount)*(rowHeight+p.BoxSpacing)
	}
	unwrappedWidth := p.DefaultAspectRatio * float64(photoCount) * rowHeight
	rows := math.Ceil(unwrappedWidth / containerWidth)
	return rows*rowHeight + (rows+1)*p.BoxSpacing
}

// RowCountForHeight inverts EstimateContainerHeight.
func (p Packer) RowCountForHeight(rowHeight, containerHeight float64) int {
	return int(math.Round((containerHeight - p.BoxSpacing) / (rowHeight + p.BoxSpacing)))
}

// DummyBoxes builds placeholder boxes for a section of photoCount photos
// whose height was estimated. Photos are spread evenly over the rows implied
// by containerHeight; boxes in the last row are never wider than a photo of
// the default aspect ratio.
func (p Packer) DummyBoxes(containerWidth, rowHeight, containerHeight float64, photoCount int) []Box {
	if photoCount <= 0 {
		return []Box{}
	}

	rowCount := p.RowCountForHeight(rowHeight, containerHeight)
	if rowCount < 1 {
		rowCount = 1
	}

	boxes := make([]Box, 0, photoCount)
	for row := 0; row < rowCount; row++ {
		lastBoxIndex := int(math.Ceil(float64(photoCount) * float64(row+1) / float64(rowCount)))
		colCount := lastBoxIndex - len(boxes)
		if colCount <= 0 {
			continue
		}

		boxWidth := (containerWidth - float64(colCount+1)*p.BoxSpacing) / float64(colCount)
		if row == rowCount-1 {
			boxWidth = math.Min(boxWidth, p.DefaultAspectRatio*rowHeight)
		}
		boxWidth = math.Max(boxWidth, 0)

		aspectRatio := 0.0
		if rowHeight > 0 {
			aspectRatio = boxWidth / rowHeight
		}

		top := p.BoxSpacing + float64(row)*(rowHeight+p.BoxSpacing)
		for col := 0; col < colCount && len(boxes) < photoCount; col++ {
			boxes = append(boxes, Box{
				Left:        float64(col)*boxWidth + float64(col+1)*p.BoxSpacing,
				Top:         top,
				Width:       boxWidth,
				Height:      rowHeight,
				AspectRatio: aspectRatio,
			})
		}
	}
	return boxes
}
