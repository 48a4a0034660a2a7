package section

import (
	"math"
	"testing"
)

func headingSig(left float64) Signature {
	return Signature{
		ElementCount: 3,
		FontFamily:   "Times",
		AvgFontSize:  14,
		Bold:         true,
		TextLength:   20,
		LineHeight:   16,
		Left:         left,
	}
}

func TestScore_SelfComparisonIsOne(t *testing.T) {
	sig := headingSig(50)
	text := "Section 2.1 Overview"
	if s := Score(sig, sig, text, text); math.Abs(s-1.0) > 1e-9 {
		t.Errorf("expected self-score 1.0, got %v", s)
	}
}

func TestScore_Symmetric(t *testing.T) {
	a := headingSig(50)
	b := headingSig(55)
	b.AvgFontSize = 13
	b.TextLength = 18

	aText := "Section 2.1 Overview"
	bText := "Section 3.4 Summary"

	ab := Score(a, b, aText, bText)
	ba := Score(b, a, bText, aText)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("expected symmetric score, got %v and %v", ab, ba)
	}
}

func TestScore_DegenerateSignatureIsZero(t *testing.T) {
	sig := headingSig(50)
	if s := Score(Signature{}, sig, "", "text"); s != 0 {
		t.Errorf("expected 0 for empty reference, got %v", s)
	}
	if s := Score(sig, Signature{}, "text", ""); s != 0 {
		t.Errorf("expected 0 for empty candidate, got %v", s)
	}
}

// A structurally identical heading in the same column with partially
// overlapping wording must score well above the default threshold.
func TestScore_SameColumnSimilarHeading(t *testing.T) {
	ref := headingSig(50)
	cand := headingSig(50)

	s := Score(ref, cand, "Section 2.1 Overview", "Section 3.4 Summary")
	if s < 0.5 {
		t.Errorf("expected score >= 0.5 for same-column heading, got %v", s)
	}
}

// Column gate: a far-right candidate with zero word overlap is rejected
// outright even when every style attribute matches.
func TestScore_ColumnGateRejectsUnrelatedColumn(t *testing.T) {
	ref := headingSig(50)
	cand := headingSig(400)

	s := Score(ref, cand, "Section 2.1 Overview", "totally unrelated words here")
	if s != 0 {
		t.Errorf("expected column gate to force score 0, got %v", s)
	}
}

// Column gate passes when the cross-column candidate shares enough words.
func TestScore_ColumnGatePassesWithWordOverlap(t *testing.T) {
	ref := headingSig(50)
	cand := headingSig(400)

	s := Score(ref, cand, "quarterly revenue growth overview", "quarterly revenue growth details")
	if s == 0 {
		t.Error("expected overlapping text to pass the column gate")
	}
}

func TestHorizontalScore_Decay(t *testing.T) {
	if s := horizontalScore(50, 60); s != 1 {
		t.Errorf("expected 1.0 within 20px, got %v", s)
	}
	if s := horizontalScore(50, 150); math.Abs(s-0.5) > 1e-9 {
		t.Errorf("expected 0.5 at 100px offset, got %v", s)
	}
	if s := horizontalScore(50, 500); s != 0 {
		t.Errorf("expected 0 beyond 200px offset, got %v", s)
	}
}

func TestRatioScore_ZeroGuard(t *testing.T) {
	if s := ratioScore(0, 0, 2); s != 1 {
		t.Errorf("expected 1 when both operands are zero, got %v", s)
	}
	if s := ratioScore(0, 10, 2); s != 0 {
		t.Errorf("expected maximally dissimilar for zero vs nonzero, got %v", s)
	}
}

func TestFamilyScore_CoarseClasses(t *testing.T) {
	if s := familyScore("Times", "Times"); s != 1 {
		t.Errorf("expected 1.0 for identical family, got %v", s)
	}
	if s := familyScore("Times New Roman", "Times-Roman"); s != 0.7 {
		t.Errorf("expected 0.7 for shared named family, got %v", s)
	}
	if s := familyScore("Arial", "Helvetica"); s != 0.7 {
		t.Errorf("expected 0.7 for two sans-serif faces, got %v", s)
	}
	if s := familyScore("Times", "Arial"); s != 0 {
		t.Errorf("expected 0 for serif vs sans-serif, got %v", s)
	}
}

func TestTextScore_EmptyWordFallback(t *testing.T) {
	// Neither side has words longer than two characters; fall back to the
	// length ratio of the raw texts.
	s := textScore("ab", "abcd")
	if math.Abs(s-0.5) > 1e-9 {
		t.Errorf("expected length-ratio fallback 0.5, got %v", s)
	}
	if s := textScore("", ""); s != 1 {
		t.Errorf("expected 1 for two empty texts, got %v", s)
	}
}
