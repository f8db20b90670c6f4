package pdf

import (
	"math"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

// Word grouping thresholds, as fractions of the font size.
const (
	baselineSlack = 0.2
	maxGap        = 0.3
	maxOverlap    = 0.5
)

// groupWords joins consecutive glyph runs into words. A run continues the current word when it
// sits on the same baseline and starts close to where the word ends. Whitespace ends a word.
// The word box origin (X0, Y0) is its left end on the baseline; Y1 adds the font size.
func groupWords(glyphs []lpdf.Text) []token.Token {
	words := make([]token.Token, 0)
	var (
		cur  *token.Token
		text strings.Builder
		size float64
	)

	flush := func() {
		if cur != nil && text.Len() > 0 {
			cur.Text = text.String()
			words = append(words, *cur)
		}
		cur = nil
		text.Reset()
		size = 0
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		if cur != nil && !continues(cur, size, g) {
			flush()
		}
		if cur == nil {
			cur = &token.Token{Box: token.Box{X0: g.X, Y0: g.Y, X1: g.X + g.W, Y1: g.Y + g.FontSize}}
			size = g.FontSize
		} else {
			cur.X1 = math.Max(cur.X1, g.X+g.W)
			cur.Y1 = math.Max(cur.Y1, g.Y+g.FontSize)
			size = math.Max(size, g.FontSize)
		}
		text.WriteString(g.S)
	}
	flush()
	return words
}

func continues(cur *token.Token, size float64, g lpdf.Text) bool {
	unit := math.Max(math.Max(size, g.FontSize), 1)
	if math.Abs(g.Y-cur.Y0) > baselineSlack*unit {
		return false
	}
	gap := g.X - cur.X1
	return gap <= maxGap*unit && gap >= -maxOverlap*unit
}
