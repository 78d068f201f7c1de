package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the text of one PDF page.
type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Meta describes the extracted document.
type Meta struct {
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
	SHA256    string `json:"sha256"`
}

// Result is the per-page text of a lease PDF.
type Result struct {
	Meta  Meta   `json:"meta"`
	Pages []Page `json:"pages"`
}

// FromPDFBytes extracts per-page text from raw PDF bytes. It is a pure
// function: same bytes, same result.
func FromPDFBytes(filename string, data []byte) (*Result, error) {
	sum := sha256.Sum256(data)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("cannot open as PDF: %w", err)
	}

	total := r.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Page: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			pages = append(pages, Page{Page: i})
			continue
		}
		pages = append(pages, Page{Page: i, Text: text})
	}

	return &Result{
		Meta: Meta{
			Filename:  filename,
			PageCount: total,
			SHA256:    hex.EncodeToString(sum[:]),
		},
		Pages: pages,
	}, nil
}

// InputText assembles the LLM prompt body: [Page N] blocks joined in order,
// truncated at maxChars to bound token usage.
func (r *Result) InputText(maxChars int) string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s\n", p.Page, strings.TrimSpace(p.Text)))
	}
	full := strings.Join(parts, "\n")
	if maxChars > 0 && len(full) > maxChars {
		full = full[:maxChars] + "\n...[TRUNCATED]"
	}
	return full
}
