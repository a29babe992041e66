package extract

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Extractor pulls per-page plain text from a slide deck. The primary path
// goes through go-fitz, which preserves ligatures and whitespace layout.
// Image-heavy slides often come back empty there; the fallback walks the
// text rows ledongthuc/pdf detects and joins them with line breaks.
type Extractor struct {
	path string
	doc  *fitz.Document
}

func Open(path string) (*Extractor, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &Extractor{path: path, doc: doc}, nil
}

func (e *Extractor) Close() error {
	return e.doc.Close()
}

// PageCount returns the number of pages in the deck.
func (e *Extractor) PageCount() int {
	return e.doc.NumPage()
}

// PageText extracts plain text from one page (1-based). An empty result is
// not an error: a slide can carry no text at all, and the caller sends a
// placeholder to the generator instead.
func (e *Extractor) PageText(page int) (string, error) {
	if page < 1 || page > e.doc.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, e.doc.NumPage())
	}

	text, err := e.doc.Text(page - 1)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", page, err)
	}
	text = strings.TrimSpace(text)
	if text != "" {
		log.Debug().Int("page", page).Int("chars", len(text)).Msg("extracted page text")
		return text, nil
	}

	fallback, err := e.rowText(page)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("fallback row extraction failed; treating page as empty")
		return "", nil
	}
	if fallback != "" {
		log.Debug().Int("page", page).Int("chars", len(fallback)).Msg("extracted page text via row fallback")
	}
	return fallback, nil
}

// rowText is the degraded path: concatenate detected text rows in their
// natural order.
func (e *Extractor) rowText(page int) (string, error) {
	f, r, err := pdf.Open(e.path)
	if err != nil {
		return "", fmt.Errorf("open pdf for row extraction: %w", err)
	}
	defer f.Close()

	if page > r.NumPage() {
		return "", nil
	}
	p := r.Page(page)
	if p.V.IsNull() {
		return "", nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("row extraction on page %d: %w", page, err)
	}

	var sb strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			sb.WriteString(word.S)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
