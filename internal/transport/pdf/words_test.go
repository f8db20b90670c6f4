package pdf

import (
	"testing"

	lpdf "github.com/ledongthuc/pdf"
)

// glyphs lays out s one character per run, each w points wide, on baseline y.
func glyphs(s string, x, y, w, size float64) []lpdf.Text {
	out := make([]lpdf.Text, 0, len(s))
	for _, r := range s {
		out = append(out, lpdf.Text{X: x, Y: y, W: w, FontSize: size, S: string(r)})
		x += w
	}
	return out
}

func TestGroupWords_SplitsOnSpaces(t *testing.T) {
	words := groupWords(glyphs("Total due", 100, 200, 5, 10))

	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(words), words)
	}
	if words[0].Text != "Total" || words[1].Text != "due" {
		t.Errorf("unexpected words: %q %q", words[0].Text, words[1].Text)
	}
	w := words[0]
	if w.X0 != 100 || w.Y0 != 200 || w.X1 != 125 || w.Y1 != 210 {
		t.Errorf("unexpected box: %+v", w.Box)
	}
	if words[1].X0 != 130 {
		t.Errorf("second word X0 = %v, want 130", words[1].X0)
	}
}

func TestGroupWords_SplitsOnBaselineChange(t *testing.T) {
	in := append(glyphs("ab", 100, 200, 5, 10), glyphs("cd", 110, 180, 5, 10)...)
	words := groupWords(in)

	if len(words) != 2 || words[0].Text != "ab" || words[1].Text != "cd" {
		t.Errorf("unexpected words: %+v", words)
	}
}

func TestGroupWords_SplitsOnLargeGap(t *testing.T) {
	in := append(glyphs("ab", 100, 200, 5, 10), glyphs("cd", 150, 200, 5, 10)...)
	words := groupWords(in)

	if len(words) != 2 {
		t.Errorf("expected gap to split words, got %+v", words)
	}
}

func TestGroupWords_JoinsMultiCharRuns(t *testing.T) {
	in := []lpdf.Text{
		{X: 10, Y: 50, W: 20, FontSize: 12, S: "Inv"},
		{X: 30.5, Y: 50.1, W: 20, FontSize: 12, S: "oice"},
	}
	words := groupWords(in)

	if len(words) != 1 || words[0].Text != "Invoice" {
		t.Fatalf("unexpected words: %+v", words)
	}
	if words[0].X1 != 50.5 || words[0].Y1 != 62 {
		t.Errorf("unexpected box: %+v", words[0].Box)
	}
}

func TestGroupWords_Empty(t *testing.T) {
	if words := groupWords(nil); words == nil || len(words) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", words)
	}
	if words := groupWords(glyphs("   ", 0, 0, 5, 10)); len(words) != 0 {
		t.Errorf("expected no words from whitespace, got %+v", words)
	}
}
