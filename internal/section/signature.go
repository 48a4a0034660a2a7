package section

// Signature is a compact structural summary of a group, cheap to compare.
type Signature struct {
	ElementCount int
	FontFamily   string
	AvgFontSize  float64
	Bold         bool
	TextLength   int
	LineHeight   float64
	Left         float64
}

// BuildSignature derives a signature from a group's fragments and bounds.
// The font family is the first one observed; groups are predominantly
// single-family, so no plurality vote is taken. TextLength sums the raw
// fragment text lengths without the joining separators.
func BuildSignature(g Group) Signature {
	sig := Signature{
		ElementCount: len(g.Fragments),
		LineHeight:   g.Bounds.Height,
		Left:         g.Bounds.Left,
	}
	if len(g.Fragments) == 0 {
		return sig
	}

	var sizeSum float64
	for _, f := range g.Fragments {
		sizeSum += f.FontSize
		sig.TextLength += len(f.Text)
		if f.Bold {
			sig.Bold = true
		}
	}
	sig.FontFamily = g.Fragments[0].FontFamily
	sig.AvgFontSize = sizeSum / float64(len(g.Fragments))
	return sig
}
