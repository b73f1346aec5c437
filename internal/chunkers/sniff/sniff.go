// Package sniff checks that document bytes match the format their path
// suffix promised, so format errors can name what was expected and found.
package sniff

import "github.com/gabriel-vasile/mimetype"

// PDFMime is the MIME type of PDF documents.
const PDFMime = "application/pdf"

// Detect returns the detected MIME type of raw, without parameters.
func Detect(raw []byte) string {
	return mimetype.Detect(raw).String()
}

// IsPDF reports whether raw looks like a PDF document, and what was found.
func IsPDF(raw []byte) (bool, string) {
	m := mimetype.Detect(raw)
	return m.Is(PDFMime), m.String()
}

// IsText reports whether raw is some kind of text (plain, markdown, HTML,
// JSON, ...), and what was found. Binary content such as images, archives
// or PDFs is rejected.
func IsText(raw []byte) (bool, string) {
	detected := mimetype.Detect(raw)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true, detected.String()
		}
	}
	return false, detected.String()
}
