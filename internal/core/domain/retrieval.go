package domain

import "time"

// Retrieval bounds.
const (
	// MaxK is the largest number of results a retrieval may return.
	MaxK = 20

	// DefaultRetrievalTimeout bounds the similarity search.
	DefaultRetrievalTimeout = 5 * time.Second
)

// ClampK maps a caller-supplied k into [1, MaxK].
// Positive values are capped at MaxK; zero and negative values become 1.
func ClampK(k int) int {
	if k <= 0 {
		return 1
	}
	return min(k, MaxK)
}

// Filter restricts a similarity search.
type Filter struct {
	// Tag, when non-nil, must exactly equal a chunk's stored tag.
	Tag *string
}

// HasTag reports whether the filter restricts by tag.
func (f Filter) HasTag() bool {
	return f.Tag != nil
}

// TagFilter returns a filter on the given tag.
func TagFilter(tag string) Filter {
	return Filter{Tag: &tag}
}

// Matches reports whether metadata satisfies the filter.
func (f Filter) Matches(m Metadata) bool {
	return f.Tag == nil || *f.Tag == m.Tag
}

// RetrievalQuery is the input of a retrieval call.
type RetrievalQuery struct {
	Query string

	// K is the requested result count, clamped with ClampK.
	K int

	// Tag restricts results to one tag when non-nil.
	Tag *string
}

// RetrievalResult is one ranked retrieval hit.
// It never carries the embedding vector.
type RetrievalResult struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}
