// Package mimetype maps file extensions to the MIME types the ingestion
// endpoint accepts. A file whose extension is not in the table is not
// importable.
package mimetype

import (
	"sort"
	"strings"
)

// Category is the server-side bucket a MIME type is filed under.
type Category string

const (
	CategoryText    Category = "text"
	CategoryPDF     Category = "pdf"
	CategoryImage   Category = "image"
	CategoryAudio   Category = "audio"
	CategoryVideo   Category = "video"
	CategoryUnknown Category = ""
)

// defaultTypes is the closed set of importable extensions. mp4 is
// claimed by video only; audio in an mp4 container is sent as video/mp4
// and classified by the server.
var defaultTypes = map[string]string{
	// documents
	"pdf": "application/pdf",
	"md":  "text/markdown",
	"txt": "text/plain",

	// jpeg
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",

	// flac
	"flac": "audio/flac",

	// mp3
	"mp3": "audio/mpeg",

	// aac, alac
	"aac": "audio/m4a",
	"m4a": "audio/x-m4a",

	// aiff
	"aff":  "audio/x-aiff",
	"aif":  "audio/x-aiff",
	"aiff": "audio/x-aiff",

	// wav
	"wav": "audio/wav",

	// video
	"mkv": "video/x-matroska",
	"mp4": "video/mp4",
}

// Table is an immutable extension to MIME type mapping.
type Table struct {
	types map[string]string
}

// Default returns the table of extensions the ingestion endpoint accepts.
func Default() *Table {
	return New(defaultTypes)
}

// New builds a table from the given mapping. Keys are lowercased and a
// leading dot is stripped; the input map is copied.
func New(types map[string]string) *Table {
	t := &Table{types: make(map[string]string, len(types))}
	for ext, mime := range types {
		t.types[normalizeExt(ext)] = strings.ToLower(mime)
	}

	return t
}

// Resolve returns the MIME type for ext. The lookup ignores case and a
// leading dot, so "JPG", ".jpg" and "jpg" all resolve.
func (t *Table) Resolve(ext string) (string, bool) {
	ext = normalizeExt(ext)
	if ext == "" {
		return "", false
	}

	mime, ok := t.types[ext]

	return mime, ok
}

// Extensions returns the known extensions in sorted order.
func (t *Table) Extensions() []string {
	exts := make([]string, 0, len(t.types))
	for ext := range t.types {
		exts = append(exts, ext)
	}

	sort.Strings(exts)

	return exts
}

// Len returns the number of known extensions.
func (t *Table) Len() int {
	return len(t.types)
}

// CategoryOf returns the list endpoint category for a MIME type.
func CategoryOf(mime string) Category {
	mime = strings.ToLower(mime)

	switch {
	case mime == "application/pdf":
		return CategoryPDF
	case strings.HasPrefix(mime, "text/"):
		return CategoryText
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage
	case strings.HasPrefix(mime, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo
	}

	return CategoryUnknown
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
