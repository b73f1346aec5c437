package pdf

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageExtractor returns the plain text of every page, in page order.
// Pages without extractable text yield an empty string.
type PageExtractor interface {
	Pages(raw []byte) ([]string, error)
}

// PageExtractorFunc adapts a function to PageExtractor.
type PageExtractorFunc func(raw []byte) ([]string, error)

// Pages calls f(raw).
func (f PageExtractorFunc) Pages(raw []byte) ([]string, error) {
	return f(raw)
}

// plainTextExtractor reads pages with github.com/ledongthuc/pdf.
type plainTextExtractor struct{}

func (plainTextExtractor) Pages(raw []byte) (pages []string, err error) {
	// The parser panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only or damaged pages are skipped, not fatal.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
