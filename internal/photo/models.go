package photo

import (
	"slices"
	"time"
)

// SectionID identifies a section. Sections are grouped by capture date, so
// the id is usually an ISO date such as "2018-05-12".
type SectionID string

// PhotoID identifies a photo in the library.
type PhotoID int64

// Photo is a single library photo as stored in the database.
type Photo struct {
	ID           PhotoID   `json:"id"`
	Title        string    `json:"title"`
	Master       string    `json:"master"`
	Extension    string    `json:"extension"`
	Orientation  int       `json:"orientation"`
	MasterWidth  int       `json:"masterWidth"`
	MasterHeight int       `json:"masterHeight"`
	Flag         bool      `json:"flag"`
	Trashed      bool      `json:"trashed"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
	ExposureTime float64   `json:"exposureTime,omitempty"`
	ISO          int       `json:"iso,omitempty"`
	Aperture     float64   `json:"aperture,omitempty"`
	FocalLength  int       `json:"focalLength,omitempty"`
}

// HasMasterSize reports whether the master dimensions are known.
func (p *Photo) HasMasterSize() bool {
	return p.MasterWidth > 0 && p.MasterHeight > 0
}

// AspectRatio returns width / height of the master image, or def when the
// master size is not known yet.
func (p *Photo) AspectRatio(def float64) float64 {
	if !p.HasMasterSize() {
		return def
	}
	return float64(p.MasterWidth) / float64(p.MasterHeight)
}

// Section is a contiguous run of photos shown under one header.
//
// PhotoIDs is nil while the section is not loaded. Once loaded it holds
// exactly Count ids, each of which is a key of PhotoData.
//
// Sections are treated as immutable values: every change produces a new
// record with a higher Revision.
type Section struct {
	ID        SectionID          `json:"id"`
	Title     string             `json:"title"`
	Count     int                `json:"count"`
	PhotoIDs  []PhotoID          `json:"photoIds"`
	PhotoData map[PhotoID]*Photo `json:"-"`
	Revision  uint64             `json:"revision"`
}

// IsLoaded reports whether the section's photos are resident.
func (s *Section) IsLoaded() bool {
	return s.PhotoIDs != nil
}

// IndexOf returns the position of id within the section, or -1.
func (s *Section) IndexOf(id PhotoID) int {
	for i, pid := range s.PhotoIDs {
		if pid == id {
			return i
		}
	}
	return -1
}

// Photos returns the loaded photos in display order.
func (s *Section) Photos() []*Photo {
	if !s.IsLoaded() {
		return nil
	}
	photos := make([]*Photo, 0, len(s.PhotoIDs))
	for _, id := range s.PhotoIDs {
		photos = append(photos, s.PhotoData[id])
	}
	return photos
}

// Unloaded returns a copy of s without photo data and with the next revision.
func (s *Section) Unloaded() *Section {
	return &Section{
		ID:       s.ID,
		Title:    s.Title,
		Count:    s.Count,
		Revision: s.Revision + 1,
	}
}

// WithPhotos returns a copy of s holding photos and with the next revision.
// Count is updated to the number of photos delivered.
func (s *Section) WithPhotos(photos []*Photo) *Section {
	ids := make([]PhotoID, 0, len(photos))
	data := make(map[PhotoID]*Photo, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
		data[p.ID] = p
	}
	return &Section{
		ID:        s.ID,
		Title:     s.Title,
		Count:     len(ids),
		PhotoIDs:  ids,
		PhotoData: data,
		Revision:  s.Revision + 1,
	}
}

// WithPhoto returns a copy of s with one photo record replaced. It returns s
// unchanged if the photo is not part of the loaded section.
func (s *Section) WithPhoto(p *Photo) *Section {
	if !s.IsLoaded() {
		return s
	}
	if _, ok := s.PhotoData[p.ID]; !ok {
		return s
	}
	data := make(map[PhotoID]*Photo, len(s.PhotoData))
	for id, existing := range s.PhotoData {
		data[id] = existing
	}
	data[p.ID] = p
	return &Section{
		ID:        s.ID,
		Title:     s.Title,
		Count:     s.Count,
		PhotoIDs:  s.PhotoIDs,
		PhotoData: data,
		Revision:  s.Revision + 1,
	}
}

// PhotoDetail is the extended record shown in the info panel.
type PhotoDetail struct {
	Photo    *Photo   `json:"photo"`
	Tags     []string `json:"tags"`
	Versions []string `json:"versions,omitempty"`
}

// FilterMode selects which photos a library view includes.
type FilterMode string

const (
	// FilterAll shows every photo that is not in the trash.
	FilterAll FilterMode = "all"
	// FilterFlagged shows flagged photos only.
	FilterFlagged FilterMode = "flagged"
	// FilterTrash shows trashed photos only.
	FilterTrash FilterMode = "trash"
)

// Filter narrows the photos returned for a section.
type Filter struct {
	Mode FilterMode `json:"mode"`
	Tags []string   `json:"tags,omitempty"`
}

// Equal reports whether f and o select the same photos.
func (f Filter) Equal(o Filter) bool {
	return f.Mode == o.Mode && slices.Equal(f.Tags, o.Tags)
}

// DefaultFilter returns the filter used when none is set.
func DefaultFilter() Filter {
	return Filter{Mode: FilterAll}
}
