// Package mediatypes lists the image formats that can be imported as photo
// masters, keyed by file extension.
package mediatypes
