package mediatypes

import "strings"

// ImageExtensions maps the extensions of importable master formats to their
// MIME types. Every entry has a decoder registered by the indexer.
var ImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsImage reports whether ext names an importable master format.
func IsImage(ext string) bool {
	_, ok := ImageExtensions[NormalizeExtension(ext)]
	return ok
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := ImageExtensions[NormalizeExtension(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}
