// Package qa chunks structured JSON question and answer files.
//
// Accepted shapes are an array of items, an object with a "qa" array, or a
// single object treated as one item. Each item with both a question and an
// answer becomes one chunk located at "Q&A #n", where n is the 1-based
// position of the item in the input, skipped items included.
package qa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/chunkers/splitter"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Key aliases in priority order.
var (
	QuestionKeys = []string{"question", "q", "query"}
	AnswerKeys   = []string{"answer", "a", "response"}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Chunker turns Q&A JSON into one chunk per valid item.
// Chunk size and overlap do not apply.
type Chunker struct{}

// New creates a Q&A chunker.
func New() *Chunker {
	return &Chunker{}
}

// Format returns domain.FormatQA.
func (c *Chunker) Format() domain.Format {
	return domain.FormatQA
}

// Chunk parses raw JSON and builds "Question: q\nAnswer: a" chunks.
func (c *Chunker) Chunk(raw []byte, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, &domain.FormatError{
			Format:   domain.FormatQA,
			Reason:   "invalid encoding",
			Expected: "UTF-8 text",
			Found:    "invalid byte sequence",
		}
	}

	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		pair, ok := Extract(obj)
		if !ok {
			continue
		}
		chunks = append(chunks, opts.NewChunk(pair.Text(), fmt.Sprintf("Q&A #%d", i+1)))
	}

	if len(chunks) == 0 {
		return nil, &domain.FormatError{Format: domain.FormatQA, Reason: "no valid Q&A found"}
	}
	return chunks, nil
}

func decodeItems(raw []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, &domain.FormatError{Format: domain.FormatQA, Reason: "malformed JSON", Err: err}
	}
	if dec.More() {
		return nil, &domain.FormatError{Format: domain.FormatQA, Reason: "malformed JSON: trailing data"}
	}

	switch v := data.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, ok := v["qa"].([]any); ok {
			return list, nil
		}
		return []any{v}, nil
	default:
		return nil, &domain.FormatError{
			Format:   domain.FormatQA,
			Reason:   "unexpected top-level value",
			Expected: "object or array",
			Found:    jsonKind(data),
		}
	}
}

// Pair is one extracted question and answer.
type Pair struct {
	Question string
	Answer   string
}

// Text renders the pair as chunk text.
func (p Pair) Text() string {
	return "Question: " + p.Question + "\nAnswer: " + p.Answer
}

// Extract returns the question and answer of an item, using the first alias
// of each field present in the item. ok is false if either is missing or
// that first value renders empty.
func Extract(item map[string]any) (pair Pair, ok bool) {
	q, ok := lookup(item, QuestionKeys)
	if !ok {
		return Pair{}, false
	}
	a, ok := lookup(item, AnswerKeys)
	if !ok {
		return Pair{}, false
	}
	return Pair{Question: q, Answer: a}, true
}

func lookup(item map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		v, present := item[k]
		if !present {
			continue
		}
		s := stringify(v)
		return s, s != ""
	}
	return "", false
}

// stringify renders a JSON value as text. Falsy values (null, false, zero,
// empty strings and empty containers) render as "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return splitter.Normalise(t)
	case bool:
		if !t {
			return ""
		}
		return "true"
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case []any:
		if len(t) == 0 {
			return ""
		}
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
