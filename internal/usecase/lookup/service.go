// Package lookup finds the text at a coordinate of a registered document page.
package lookup

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/pagemark/internal/domain"
	"github.com/kailas-cloud/pagemark/internal/domain/geometry"
	"github.com/kailas-cloud/pagemark/internal/domain/match"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

// Space names the coordinate system of a query.
type Space string

const (
	// SpacePage is PDF page space: points, origin bottom-left.
	SpacePage Space = "page"
	// SpacePixel is rendered bitmap space: pixels, origin top-left.
	SpacePixel Space = "pixel"
)

// ParseSpace validates a coordinate space name. Empty means SpacePage.
func ParseSpace(s string) (Space, error) {
	switch Space(s) {
	case "", SpacePage:
		return SpacePage, nil
	case SpacePixel:
		return SpacePixel, nil
	default:
		return "", domain.InvalidArgument("space must be %q or %q, got %q", SpacePage, SpacePixel, s)
	}
}

// Query describes a lookup. Zero Scale and nil Tolerance take the service defaults.
type Query struct {
	DocumentID string
	Page       int
	X, Y       float64
	Space      Space
	Scale      float64
	Tolerance  *float64
}

// Result holds the normalized page-space coordinate and the matched tokens.
type Result struct {
	Page      int
	X, Y      float64
	Tolerance float64
	Tokens    []token.Token
}

// Service combines the registry, the extractor and the matcher.
type Service struct {
	docs             DocumentReader
	extractor        TextExtractor
	defaultScale     float64
	defaultTolerance float64
}

// New creates a lookup service.
func New(docs DocumentReader, extractor TextExtractor) *Service {
	return &Service{
		docs:             docs,
		extractor:        extractor,
		defaultScale:     1,
		defaultTolerance: match.DefaultTolerance,
	}
}

// WithDefaults sets the scale assumed for pixel queries and the default tolerance.
func (s *Service) WithDefaults(scale, tolerance float64) *Service {
	if scale > 0 {
		s.defaultScale = scale
	}
	if tolerance >= 0 {
		s.defaultTolerance = tolerance
	}
	return s
}

// Lookup returns every token within tolerance of the queried coordinate.
func (s *Service) Lookup(ctx context.Context, q Query) (Result, error) {
	res, err := s.lookup(ctx, q)
	switch {
	case err != nil:
		metrics.LookupsTotal.WithLabelValues("error").Inc()
	case len(res.Tokens) == 0:
		metrics.LookupsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.LookupsTotal.WithLabelValues("match").Inc()
	}
	return res, err
}

func (s *Service) lookup(ctx context.Context, q Query) (Result, error) {
	tolerance := s.defaultTolerance
	if q.Tolerance != nil {
		tolerance = *q.Tolerance
	}
	scale := q.Scale
	if scale == 0 {
		scale = s.defaultScale
	}

	doc, err := s.docs.Get(ctx, q.DocumentID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve document: %w", err)
	}
	if err := doc.CheckPage(q.Page); err != nil {
		return Result{}, err
	}

	page, err := s.extractor.Extract(ctx, q.DocumentID, q.Page)
	if err != nil {
		return Result{}, fmt.Errorf("extract page %d: %w", q.Page, err)
	}

	x, y := q.X, q.Y
	if q.Space == SpacePixel {
		x, y, err = geometry.ToPage(q.X, q.Y, page.Height, scale)
		if err != nil {
			return Result{}, err
		}
	}

	tokens, err := match.Match(page.Tokens, x, y, tolerance)
	if err != nil {
		return Result{}, err
	}
	return Result{Page: q.Page, X: x, Y: y, Tolerance: tolerance, Tokens: tokens}, nil
}
