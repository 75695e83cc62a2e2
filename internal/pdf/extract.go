// Package pdf extracts plain text from rendered documents and locates the
// related-work section in it using line-level typographic cues.
package pdf

import (
	"bytes"
	"errors"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// MaxBytes is the default size ceiling for rendered documents.
	MaxBytes = 50 * 1024 * 1024

	// MaxPages rejects documents with excessive page counts outright.
	MaxPages = 100

	// ReadPages bounds extraction to the leading pages; related-work
	// sections sit early in virtually all papers.
	ReadPages = 20

	// minPageChars skips pages whose extraction yielded almost nothing.
	minPageChars = 10
)

var (
	// ErrTooManyPages indicates the document exceeded the page ceiling.
	ErrTooManyPages = errors.New("document has too many pages")

	// ErrNoText indicates no page yielded usable text.
	ErrNoText = errors.New("no text extracted from document")
)

// Text extracts plain text from the first ReadPages pages of a PDF. Pages
// that fail to extract or yield fewer than minPageChars characters are
// skipped; extraction errors on individual pages are not fatal.
func Text(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	if r.NumPage() > MaxPages {
		return "", ErrTooManyPages
	}

	maxPages := r.NumPage()
	if maxPages > ReadPages {
		maxPages = ReadPages
	}

	var parts []string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(text)) > minPageChars {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", ErrNoText
	}
	return strings.Join(parts, "\n"), nil
}
