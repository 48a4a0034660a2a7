// Package fragment defines the text fragment data model and the sources
// that supply per-page fragments to the search engine.
package fragment

import (
	"context"
	"strings"

	"github.com/sectseek/sectseek/internal/geom"
)

// TextFragment is the smallest unit of positioned text: one word or glyph
// run with its pixel bounds and computed style. Fragments are owned by the
// extraction pass that produced them and are never shared across pages.
type TextFragment struct {
	Text       string    `json:"text"`
	Bounds     geom.Rect `json:"bounds"`
	PageNumber int       `json:"page_number"`
	FontFamily string    `json:"font_family"`
	FontSize   float64   `json:"font_size"`
	Bold       bool      `json:"bold"`
}

// Empty reports whether the fragment carries no visible text.
func (f TextFragment) Empty() bool {
	return strings.TrimSpace(f.Text) == ""
}

// Source supplies extracted fragments for individual pages.
// Implementations must be safe for concurrent calls on distinct pages.
type Source interface {
	// Fragments returns the ordered fragments of one page (1-based).
	Fragments(ctx context.Context, pageNumber int) ([]TextFragment, error)
}

// DocumentInfo describes the paginated document being searched.
type DocumentInfo interface {
	TotalPages() int
	// ViewportFor returns the pixel dimensions of one page (1-based).
	ViewportFor(pageNumber int) (geom.Viewport, error)
}

// Document combines fragment access with page geometry; both concrete
// sources in this package implement it.
type Document interface {
	Source
	DocumentInfo
}
