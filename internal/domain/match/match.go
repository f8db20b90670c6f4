// Package match finds text tokens near a coordinate.
package match

import (
	"math"

	"github.com/kailas-cloud/pagemark/internal/domain"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

// DefaultTolerance is the window half-size, in page points, used when the caller gives none.
const DefaultTolerance = 20.0

// Match returns every token whose origin (X0, Y0) lies strictly within tolerance of
// (x, y) on both axes. A token whose origin equals the target is always included.
// Input order is preserved; no ranking is applied. An empty result is not an error.
func Match(tokens []token.Token, x, y, tolerance float64) ([]token.Token, error) {
	if math.IsNaN(tolerance) || tolerance < 0 {
		return nil, domain.InvalidArgument("tolerance must be >= 0, got %v", tolerance)
	}

	out := make([]token.Token, 0)
	for _, t := range tokens {
		if within(t.X0, t.Y0, x, y, tolerance) {
			out = append(out, t)
		}
	}
	return out, nil
}

func within(x0, y0, x, y, tolerance float64) bool {
	if x0 == x && y0 == y {
		return true
	}
	return math.Abs(x0-x) < tolerance && math.Abs(y0-y) < tolerance
}
