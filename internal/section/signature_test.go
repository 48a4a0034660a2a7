package section

import (
	"testing"

	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/geom"
)

func TestBuildSignature_Basics(t *testing.T) {
	fragments := []fragment.TextFragment{
		{Text: "Chapter", FontFamily: "Times", FontSize: 14, Bounds: geom.Rect{Left: 50, Top: 100, Width: 70, Height: 14}},
		{Text: "One", FontFamily: "Times", FontSize: 16, Bold: true, Bounds: geom.Rect{Left: 125, Top: 100, Width: 35, Height: 16}},
	}
	g := buildGroup(fragments, fragments[0].Bounds.Union(fragments[1].Bounds))

	sig := g.Sig
	if sig.ElementCount != 2 {
		t.Errorf("expected element count 2, got %d", sig.ElementCount)
	}
	if sig.FontFamily != "Times" {
		t.Errorf("expected font family Times, got %q", sig.FontFamily)
	}
	if sig.AvgFontSize != 15 {
		t.Errorf("expected avg font size 15, got %v", sig.AvgFontSize)
	}
	if !sig.Bold {
		t.Error("expected bold: any bold fragment marks the group bold")
	}
	if sig.Left != 50 {
		t.Errorf("expected left 50, got %v", sig.Left)
	}
	if sig.LineHeight != 16 {
		t.Errorf("expected line height 16 from union bounds, got %v", sig.LineHeight)
	}
}

// TextLength counts raw fragment characters only, never the joining spaces.
func TestBuildSignature_TextLengthExcludesSeparators(t *testing.T) {
	fragments := []fragment.TextFragment{
		{Text: "abc", Bounds: geom.Rect{Left: 0, Top: 0, Width: 30, Height: 12}},
		{Text: "defg", Bounds: geom.Rect{Left: 35, Top: 0, Width: 40, Height: 12}},
	}
	g := buildGroup(fragments, fragments[0].Bounds.Union(fragments[1].Bounds))

	if g.Sig.TextLength != 7 {
		t.Errorf("expected text length 7 (3+4), got %d", g.Sig.TextLength)
	}
	if len(g.Text) != 8 {
		t.Errorf("expected joined text length 8 with separator, got %d", len(g.Text))
	}
}

func TestBuildSignature_EmptyGroup(t *testing.T) {
	sig := BuildSignature(Group{})
	if sig.ElementCount != 0 || sig.TextLength != 0 || sig.AvgFontSize != 0 {
		t.Errorf("expected zero signature for empty group, got %+v", sig)
	}
}
