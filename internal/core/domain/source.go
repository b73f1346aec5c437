package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// SourceLabelRule selects how a filename becomes a chunk's source label.
type SourceLabelRule string

const (
	// SourceLabelStem strips only the final extension: "report.final.pdf" → "report.final".
	SourceLabelStem SourceLabelRule = "stem"

	// SourceLabelLegacy keeps everything after the first dot: "report.final.pdf" → "final.pdf".
	// Kept for stores populated by older deployments.
	SourceLabelLegacy SourceLabelRule = "legacy"
)

// IsValid returns true if the rule is recognised.
func (r SourceLabelRule) IsValid() bool {
	return r == SourceLabelStem || r == SourceLabelLegacy
}

// SourceLabel derives the source label from a path or URL.
func SourceLabel(location string, rule SourceLabelRule) string {
	name := baseName(location)

	if rule == SourceLabelLegacy {
		if _, rest, ok := strings.Cut(name, "."); ok {
			return rest
		}
		return name
	}

	ext := path.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func baseName(location string) string {
	p := locationPath(location)
	if strings.Contains(location, "://") {
		return path.Base(p)
	}
	return filepath.Base(p)
}
