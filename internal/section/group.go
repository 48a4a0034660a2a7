// Package section clusters positioned text fragments into logical sections
// and compares their structural signatures.
package section

import (
	"sort"
	"strings"

	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/geom"
)

// sameRowTolerance is the vertical distance (pixels) within which two
// fragments are ordered left-to-right as one visual row.
const sameRowTolerance = 5.0

// GroupOptions tune the geometric adjacency rules.
type GroupOptions struct {
	// MaxLineGap is the largest vertical gap (pixels) between a group's
	// bottom edge and the next fragment that still reads as the next line.
	MaxLineGap float64
	// MaxColumnGap is the horizontal tolerance (pixels) for treating a
	// next-line fragment as part of the same column flow.
	MaxColumnGap float64
}

// DefaultGroupOptions returns the grouping defaults.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{MaxLineGap: 30, MaxColumnGap: 150}
}

// Group is a cluster of fragments read as one logical line or paragraph.
// Immutable once built.
type Group struct {
	Fragments  []fragment.TextFragment
	Bounds     geom.Rect // minimal rectangle covering all fragments
	Text       string    // fragment texts joined by single spaces
	PageNumber int
	Sig        Signature
}

// GroupFragments clusters a page's fragments into sections. Fragments are
// scanned top-to-bottom; a fragment joins the running group when it overlaps
// the group's vertical span (same visual line, including wrapped spans) or
// when it starts a plausible next line: vertical gap within MaxLineGap and
// horizontal ranges overlapping within MaxColumnGap. Whitespace-only
// fragments are dropped before grouping. Empty input yields no groups.
func GroupFragments(fragments []fragment.TextFragment, opts GroupOptions) []Group {
	if opts.MaxLineGap <= 0 {
		opts.MaxLineGap = 30
	}
	if opts.MaxColumnGap <= 0 {
		opts.MaxColumnGap = 150
	}

	sorted := make([]fragment.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		if !f.Empty() {
			sorted = append(sorted, f)
		}
	}
	if len(sorted) == 0 {
		return nil
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		di := sorted[i].Bounds.Top - sorted[j].Bounds.Top
		if di < -sameRowTolerance {
			return true
		}
		if di > sameRowTolerance {
			return false
		}
		return sorted[i].Bounds.Left < sorted[j].Bounds.Left
	})

	var groups []Group
	current := []fragment.TextFragment{sorted[0]}
	bounds := sorted[0].Bounds

	for _, f := range sorted[1:] {
		if belongs(f.Bounds, bounds, opts) {
			current = append(current, f)
			bounds = bounds.Union(f.Bounds)
			continue
		}
		groups = append(groups, buildGroup(current, bounds))
		current = []fragment.TextFragment{f}
		bounds = f.Bounds
	}
	groups = append(groups, buildGroup(current, bounds))
	return groups
}

// belongs decides whether a fragment continues the running group.
func belongs(f, group geom.Rect, opts GroupOptions) bool {
	// Same visual line: vertical spans overlap.
	if f.Top <= group.Bottom() && f.Bottom() >= group.Top {
		return true
	}
	// Next-line continuation: small vertical gap, same column flow.
	gap := f.Top - group.Bottom()
	if gap < 0 || gap > opts.MaxLineGap {
		return false
	}
	return f.Right() >= group.Left-opts.MaxColumnGap &&
		f.Left <= group.Right()+opts.MaxColumnGap
}

func buildGroup(fragments []fragment.TextFragment, bounds geom.Rect) Group {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	g := Group{
		Fragments:  fragments,
		Bounds:     bounds,
		Text:       strings.Join(texts, " "),
		PageNumber: fragments[0].PageNumber,
	}
	g.Sig = BuildSignature(g)
	return g
}
