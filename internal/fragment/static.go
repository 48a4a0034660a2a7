package fragment

import (
	"context"
	"fmt"

	"github.com/sectseek/sectseek/internal/geom"
)

// StaticPage is one page of a pre-rendered text layer: the host viewer's
// fragments together with the viewport they were rendered at.
type StaticPage struct {
	PageNumber int            `json:"page_number"`
	Viewport   geom.Viewport  `json:"viewport"`
	Fragments  []TextFragment `json:"fragments"`
}

// StaticDocument is a Document backed by in-memory pages. It is the adapter
// for rendered-layout fragment sources (a viewer hands over its text layer
// wholesale) and doubles as the test fixture for the engine.
type StaticDocument struct {
	pages map[int]StaticPage
	total int
}

// NewStaticDocument builds a document from rendered pages. The page count is
// the highest page number seen; missing pages behave as extraction failures.
func NewStaticDocument(pages []StaticPage) *StaticDocument {
	d := &StaticDocument{pages: make(map[int]StaticPage, len(pages))}
	for _, p := range pages {
		d.pages[p.PageNumber] = p
		if p.PageNumber > d.total {
			d.total = p.PageNumber
		}
	}
	return d
}

// TotalPages implements DocumentInfo.
func (d *StaticDocument) TotalPages() int { return d.total }

// ViewportFor implements DocumentInfo.
func (d *StaticDocument) ViewportFor(pageNumber int) (geom.Viewport, error) {
	p, ok := d.pages[pageNumber]
	if !ok {
		return geom.Viewport{}, fmt.Errorf("page %d: no viewport", pageNumber)
	}
	if !p.Viewport.Valid() {
		return geom.Viewport{}, fmt.Errorf("page %d: degenerate viewport", pageNumber)
	}
	return p.Viewport, nil
}

// Fragments implements Source.
func (d *StaticDocument) Fragments(_ context.Context, pageNumber int) ([]TextFragment, error) {
	p, ok := d.pages[pageNumber]
	if !ok {
		return nil, fmt.Errorf("page %d: no fragments", pageNumber)
	}
	return p.Fragments, nil
}
