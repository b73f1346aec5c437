// Package splitter provides the recursive length-bounded text splitter
// shared by the PDF and Markdown chunkers.
//
// Text is split on the first separator that occurs in it (paragraph, line,
// word, then single characters). Pieces shorter than the chunk size are
// merged greedily into windows; pieces that are still too long are split
// again with the remaining separators. Consecutive windows repeat up to
// the overlap's worth of trailing pieces. Each separator stays attached to
// the start of the piece that follows it. Lengths are counted in runes.
package splitter

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultSeparators are tried in order: paragraph, line, word, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text into overlapping, length-bounded windows.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator list. The last separator should be
// "" so that any text can be reduced to the chunk size.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap larger than the window would never let the merge advance.
	if s.overlap > s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split splits text into trimmed, non-empty windows.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

// Chunks splits text and normalises every window, dropping windows that
// normalise to nothing.
func (s *Splitter) Chunks(text string) []string {
	windows := s.Split(text)
	out := make([]string, 0, len(windows))
	for _, w := range windows {
		if n := Normalise(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if length(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge joins small pieces into windows of at most chunkSize characters,
// carrying up to overlap characters of trailing pieces into the next window.
func (s *Splitter) merge(pieces []string) []string {
	var (
		windows []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		n := length(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if w := join(current); w != "" {
				windows = append(windows, w)
			}
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= length(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if w := join(current); w != "" {
		windows = append(windows, w)
	}
	return windows
}

// splitKeepSeparator splits text on sep, prefixing each piece after the
// first with the separator. Empty pieces are dropped. An empty separator
// splits into single characters.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// Normalise replaces newlines with spaces, collapses whitespace runs to a
// single space and trims the result.
func Normalise(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
