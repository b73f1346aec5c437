package domain

import (
	"net/url"
	"path"
	"strings"
)

// Format identifies which chunker handles a document.
type Format string

// Supported formats, selected purely by path suffix.
const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatQA       Format = "qa"
)

// Extension returns the path suffix that selects the format.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatMarkdown:
		return ".md"
	case FormatQA:
		return ".json"
	default:
		return ""
	}
}

// Description returns a human-readable name used in error messages.
func (f Format) Description() string {
	switch f {
	case FormatPDF:
		return "PDF document"
	case FormatMarkdown:
		return "Markdown text"
	case FormatQA:
		return "JSON Q&A"
	default:
		return unknownDescription
	}
}

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	return f.Extension() != ""
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// AllFormats returns every supported format.
func AllFormats() []Format {
	return []Format{FormatPDF, FormatMarkdown, FormatQA}
}

// FormatFromPath selects the format from a file path or URL suffix.
// Query strings and fragments of URLs are ignored. Matching is exact and
// case-sensitive, so "notes.MD" is unsupported.
func FormatFromPath(location string) (Format, error) {
	p := locationPath(location)
	for _, f := range AllFormats() {
		if strings.HasSuffix(p, f.Extension()) {
			return f, nil
		}
	}
	return "", &UnsupportedFormatError{Path: location, Suffix: path.Ext(p)}
}

// locationPath strips scheme, host, query and fragment from URLs.
// Plain filesystem paths are returned unchanged.
func locationPath(location string) string {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Path
	}
	return location
}

const unknownDescription = "Unknown"
