package fragment

import (
	"context"
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/sectseek/sectseek/internal/geom"
)

// wordSpaceFactor is the fraction of the font size treated as a word break
// between adjacent content-stream characters.
const wordSpaceFactor = 0.3

// rowToleranceFactor is the fraction of the font size within which two
// characters are considered to sit on the same baseline.
const rowToleranceFactor = 0.3

// lineHeightFactor approximates a glyph box height from the font size.
// The content stream only carries the baseline, not the rendered extent.
const lineHeightFactor = 1.2

// PDFDocument is a Document backed by a PDF file's content streams.
// Characters are assembled into word-level fragments and their bottom-up
// PDF coordinates flipped into the engine's top-down pixel space.
type PDFDocument struct {
	file   *os.File
	reader *pdflib.Reader
}

// OpenPDF opens a PDF file as a fragment document. The caller must Close it.
func OpenPDF(path string) (*PDFDocument, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDFDocument{file: f, reader: r}, nil
}

// Close releases the underlying file.
func (d *PDFDocument) Close() error {
	return d.file.Close()
}

// TotalPages implements DocumentInfo.
func (d *PDFDocument) TotalPages() int { return d.reader.NumPage() }

// ViewportFor implements DocumentInfo, reading the page MediaBox.
func (d *PDFDocument) ViewportFor(pageNumber int) (geom.Viewport, error) {
	page := d.reader.Page(pageNumber)
	if page.V.IsNull() {
		return geom.Viewport{}, fmt.Errorf("page %d: missing", pageNumber)
	}
	box := page.V.Key("MediaBox")
	if box.Len() < 4 {
		return geom.Viewport{}, fmt.Errorf("page %d: no media box", pageNumber)
	}
	vp := geom.Viewport{
		Width:  box.Index(2).Float64() - box.Index(0).Float64(),
		Height: box.Index(3).Float64() - box.Index(1).Float64(),
	}
	if !vp.Valid() {
		return geom.Viewport{}, fmt.Errorf("page %d: degenerate media box", pageNumber)
	}
	return vp, nil
}

// Fragments implements Source. Each returned fragment is one word.
func (d *PDFDocument) Fragments(ctx context.Context, pageNumber int) ([]TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := d.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing", pageNumber)
	}
	vp, err := d.ViewportFor(pageNumber)
	if err != nil {
		return nil, err
	}
	content := page.Content()
	return assembleWords(content.Text, pageNumber, vp.Height), nil
}

// assembleWords merges consecutive content-stream characters into word
// fragments. A new word starts on a font change, a baseline change, a
// whitespace character, or a horizontal gap wider than wordSpaceFactor
// of the font size.
func assembleWords(chars []pdflib.Text, pageNumber int, pageHeight float64) []TextFragment {
	var out []TextFragment
	var cur *wordBuilder

	flush := func() {
		if cur == nil {
			return
		}
		if f, ok := cur.fragment(pageNumber, pageHeight); ok {
			out = append(out, f)
		}
		cur = nil
	}

	for _, c := range chars {
		if strings.TrimSpace(c.S) == "" {
			flush()
			continue
		}
		if cur != nil && !cur.accepts(c) {
			flush()
		}
		if cur == nil {
			cur = newWordBuilder(c)
		} else {
			cur.add(c)
		}
	}
	flush()
	return out
}

type wordBuilder struct {
	text     strings.Builder
	font     string
	fontSize float64
	x, y     float64 // origin of the first char, PDF coords
	right    float64
}

func newWordBuilder(c pdflib.Text) *wordBuilder {
	b := &wordBuilder{
		font:     c.Font,
		fontSize: c.FontSize,
		x:        c.X,
		y:        c.Y,
		right:    c.X + c.W,
	}
	b.text.WriteString(c.S)
	return b
}

func (b *wordBuilder) accepts(c pdflib.Text) bool {
	if c.Font != b.font || c.FontSize != b.fontSize {
		return false
	}
	tol := b.fontSize * rowToleranceFactor
	if abs(c.Y-b.y) > tol {
		return false
	}
	gap := c.X - b.right
	return gap <= b.fontSize*wordSpaceFactor
}

func (b *wordBuilder) add(c pdflib.Text) {
	b.text.WriteString(c.S)
	if c.X+c.W > b.right {
		b.right = c.X + c.W
	}
}

func (b *wordBuilder) fragment(pageNumber int, pageHeight float64) (TextFragment, bool) {
	text := strings.TrimSpace(b.text.String())
	if text == "" {
		return TextFragment{}, false
	}
	height := b.fontSize * lineHeightFactor
	return TextFragment{
		Text: text,
		Bounds: geom.Rect{
			Left:   b.x,
			Top:    pageHeight - b.y - b.fontSize,
			Width:  b.right - b.x,
			Height: height,
		},
		PageNumber: pageNumber,
		FontFamily: baseFontFamily(b.font),
		FontSize:   b.fontSize,
		Bold:       isBoldFont(b.font),
	}, true
}

// baseFontFamily strips the subset prefix ("ABCDEF+") and style suffix
// from a PDF base font name, e.g. "KAXQNM+Times-BoldItalic" -> "Times".
func baseFontFamily(name string) string {
	if i := strings.IndexByte(name, '+'); i >= 0 && i == 6 {
		name = name[i+1:]
	}
	if i := strings.IndexAny(name, "-,"); i >= 0 {
		name = name[:i]
	}
	return name
}

func isBoldFont(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bold") ||
		strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
