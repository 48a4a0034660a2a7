// Package geom provides the rectangle types and coordinate conversions
// shared by fragment extraction, section grouping, and search results.
// Pixel space is per page, origin top-left. Normalized space is fractional
// (0..1) relative to a page viewport, so positions survive zoom changes.
package geom

// Rect is an axis-aligned rectangle in page pixel space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns Left + Width.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns Top + Height.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Area returns the rectangle area. Degenerate rectangles have area 0.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Union returns the minimal rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	left := min(r.Left, o.Left)
	top := min(r.Top, o.Top)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Intersect returns the overlapping region of r and o, or a zero Rect
// when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := max(r.Left, o.Left)
	top := max(r.Top, o.Top)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// IoU returns intersection-over-union of two rectangles in [0,1].
func (r Rect) IoU(o Rect) float64 {
	inter := r.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Viewport holds the rendered pixel dimensions of one page.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the viewport has usable dimensions.
func (v Viewport) Valid() bool { return v.Width > 0 && v.Height > 0 }

// NormalizedRect is a rectangle in fractional page coordinates.
type NormalizedRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizedPosition describes a page-relative region: the bounding
// rectangle plus the constituent rectangles of a multi-line selection.
type NormalizedPosition struct {
	PageNumber int              `json:"page_number"`
	Bounds     NormalizedRect   `json:"bounds"`
	Rects      []NormalizedRect `json:"rects,omitempty"`
}

// Valid reports whether the position carries a usable bounding rectangle.
func (p NormalizedPosition) Valid() bool {
	return p.PageNumber >= 1 && p.Bounds.Width > 0 && p.Bounds.Height > 0
}

// ToPixels converts a normalized rectangle to pixel space for a viewport.
func ToPixels(nr NormalizedRect, vp Viewport) Rect {
	return Rect{
		Left:   nr.Left * vp.Width,
		Top:    nr.Top * vp.Height,
		Width:  nr.Width * vp.Width,
		Height: nr.Height * vp.Height,
	}
}

// ToNormalized converts a pixel rectangle to normalized space for a viewport.
// A degenerate viewport yields a zero rectangle rather than dividing by zero.
func ToNormalized(r Rect, vp Viewport) NormalizedRect {
	if !vp.Valid() {
		return NormalizedRect{}
	}
	return NormalizedRect{
		Left:   r.Left / vp.Width,
		Top:    r.Top / vp.Height,
		Width:  r.Width / vp.Width,
		Height: r.Height / vp.Height,
	}
}
