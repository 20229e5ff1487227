package store

import (
	"photo-grid/internal/photo"
)

// Action is a state change request handled by Reduce.
type Action interface {
	actionName() string
}

// SetSections replaces the section list, e.g. after the library was
// (re)queried with a new filter. All sections start unloaded.
type SetSections struct {
	Sections []*photo.Section
}

// ForgetSectionPhotos drops the photo data of the given sections.
type ForgetSectionPhotos struct {
	SectionIDs []photo.SectionID
}

// FetchSectionPhotosSuccess stores fetched photos for a section. Revision
// and Filter are the section revision and filter the fetch started with; the
// result is dropped if either has changed since.
type FetchSectionPhotosSuccess struct {
	SectionID photo.SectionID
	Revision  uint64
	Filter    photo.Filter
	Photos    []*photo.Photo
}

// FetchSectionPhotosFailure records a failed section fetch.
type FetchSectionPhotosFailure struct {
	SectionID photo.SectionID
	Err       error
}

// SetInfoPhotoRequest selects the photo shown in the info panel. An empty
// SectionID clears the panel.
type SetInfoPhotoRequest struct {
	SectionID photo.SectionID
	PhotoID   photo.PhotoID
}

// SetInfoPhotoSuccess delivers the detail record for the info photo.
type SetInfoPhotoSuccess struct {
	Detail *photo.PhotoDetail
}

// SetInfoPhotoFailure records a failed detail fetch.
type SetInfoPhotoFailure struct {
	PhotoID photo.PhotoID
	Err     error
}

// SetSelection replaces the grid selection.
type SetSelection struct {
	Selection Selection
}

// OpenDetail opens the detail view on a photo.
type OpenDetail struct {
	SectionID photo.SectionID
	PhotoID   photo.PhotoID
}

// CloseDetail closes the detail view.
type CloseDetail struct{}

// OpenExport opens the export dialog for photos of one section.
type OpenExport struct {
	SectionID photo.SectionID
	PhotoIDs  []photo.PhotoID
}

// CloseExport closes the export dialog.
type CloseExport struct{}

// SetFilter changes the library filter. Loaded sections are dropped since
// their photo lists no longer match.
type SetFilter struct {
	Filter photo.Filter
}

// UpdatePhotoMasterSize stores master dimensions discovered while rendering
// a thumbnail.
type UpdatePhotoMasterSize struct {
	SectionID photo.SectionID
	PhotoID   photo.PhotoID
	Width     int
	Height    int
}

func (SetSections) actionName() string               { return "set_sections" }
func (ForgetSectionPhotos) actionName() string       { return "forget_section_photos" }
func (FetchSectionPhotosSuccess) actionName() string { return "fetch_section_photos_success" }
func (FetchSectionPhotosFailure) actionName() string { return "fetch_section_photos_failure" }
func (SetInfoPhotoRequest) actionName() string       { return "set_info_photo_request" }
func (SetInfoPhotoSuccess) actionName() string       { return "set_info_photo_success" }
func (SetInfoPhotoFailure) actionName() string       { return "set_info_photo_failure" }
func (SetSelection) actionName() string              { return "set_selection" }
func (OpenDetail) actionName() string                { return "open_detail" }
func (CloseDetail) actionName() string               { return "close_detail" }
func (OpenExport) actionName() string                { return "open_export" }
func (CloseExport) actionName() string               { return "close_export" }
func (SetFilter) actionName() string                 { return "set_filter" }
func (UpdatePhotoMasterSize) actionName() string     { return "update_photo_master_size" }

// ActionName returns a stable name for logging and metrics.
func ActionName(a Action) string {
	return a.actionName()
}
