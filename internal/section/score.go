package section

import (
	"strings"
)

// Sub-score weights. They intentionally sum to 1.10; the final score divides
// by the accumulated weight total, so the result stays in [0,1].
const (
	weightHorizontal = 0.25
	weightCount      = 0.10
	weightFontSize   = 0.15
	weightText       = 0.15
	weightLineHeight = 0.10
	weightFontFamily = 0.20
	weightBold       = 0.15
)

// Column-gate parameters: a candidate whose horizontal alignment sub-score
// falls below columnGateAlignment only matches when its long-word overlap
// with the reference reaches columnGateMinOverlap. This trades recall for
// precision on cross-column matches.
const (
	columnGateAlignment  = 0.8
	columnGateMinOverlap = 0.15
)

// Score computes similarity in [0,1] between a reference and a candidate
// section from their signatures and raw text. Degenerate signatures
// (no elements) score 0.
func Score(ref, cand Signature, refText, candText string) float64 {
	if ref.ElementCount == 0 || cand.ElementCount == 0 {
		return 0
	}

	horizontal := horizontalScore(ref.Left, cand.Left)

	var sum, weight float64
	add := func(s, w float64) {
		sum += s * w
		weight += w
	}

	add(horizontal, weightHorizontal)
	add(ratioScore(float64(ref.ElementCount), float64(cand.ElementCount), 2), weightCount)
	add(ratioScore(ref.AvgFontSize, cand.AvgFontSize, 3), weightFontSize)
	add(textScore(refText, candText), weightText)
	add(ratioScore(ref.LineHeight, cand.LineHeight, 2), weightLineHeight)
	add(familyScore(ref.FontFamily, cand.FontFamily), weightFontFamily)
	add(boolScore(ref.Bold == cand.Bold), weightBold)

	score := sum / weight

	// Column gate: different column, so demand real textual overlap.
	if horizontal < columnGateAlignment {
		if jaccard(words(refText, 3), words(candText, 3)) < columnGateMinOverlap {
			return 0
		}
	}
	return score
}

// horizontalScore favors same-column candidates: aligned within 20px is a
// perfect match, beyond that the score decays linearly over 200px.
func horizontalScore(refLeft, candLeft float64) float64 {
	diff := absFloat(refLeft - candLeft)
	if diff < 20 {
		return 1
	}
	s := 1 - diff/200
	if s < 0 {
		return 0
	}
	return s
}

// ratioScore maps a relative difference to [0,1], scaled by steepness.
// Two zero values compare as identical; otherwise a zero maximum would mean
// both operands are zero, so the guard never mis-scores a real difference.
func ratioScore(a, b, steepness float64) float64 {
	m := maxFloat(a, b)
	if m == 0 {
		return 1
	}
	d := steepness * absFloat(a-b) / m
	if d > 1 {
		d = 1
	}
	return 1 - d
}

// textScore is the Jaccard similarity over lowercase words longer than two
// characters. When either side has no such words, it falls back to the ratio
// of the shorter text length to the longer.
func textScore(refText, candText string) float64 {
	a := words(refText, 2)
	b := words(candText, 2)
	if len(a) == 0 || len(b) == 0 {
		shorter := float64(minInt(len(refText), len(candText)))
		longer := float64(maxInt(len(refText), len(candText)))
		if longer == 0 {
			return 1
		}
		return shorter / longer
	}
	return jaccard(a, b)
}

func familyScore(a, b string) float64 {
	if a == b {
		return 1
	}
	if sameFamilyClass(a, b) {
		return 0.7
	}
	return 0
}

// namedFamilies are concrete typefaces matched by substring, so
// "Times New Roman" and "Times-Roman" land in the same class.
var namedFamilies = []string{"times", "arial", "helvetica", "courier", "georgia", "verdana", "garamond"}

func sameFamilyClass(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, name := range namedFamilies {
		if strings.Contains(la, name) && strings.Contains(lb, name) {
			return true
		}
	}
	if isSerif(la) && isSerif(lb) {
		return true
	}
	if isSansSerif(la) && isSansSerif(lb) {
		return true
	}
	return false
}

func isSansSerif(lower string) bool {
	if strings.Contains(lower, "sans") {
		return true
	}
	for _, name := range []string{"arial", "helvetica", "verdana", "calibri", "tahoma"} {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func isSerif(lower string) bool {
	if strings.Contains(lower, "sans") {
		return false
	}
	if strings.Contains(lower, "serif") {
		return true
	}
	for _, name := range []string{"times", "georgia", "garamond", "book"} {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func boolScore(equal bool) float64 {
	if equal {
		return 1
	}
	return 0
}

// words returns the set of lowercase words strictly longer than minLen.
func words(text string, minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'")
		if len(w) > minLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// jaccard computes |intersection|/|union| over two word sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
