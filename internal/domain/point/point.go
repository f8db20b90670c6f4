// Package point defines a named coordinate annotation on a document page.
package point

import (
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/pagemark/internal/domain"
)

// MaxNameLength bounds the point name.
const MaxNameLength = 200

// UnknownSource is rendered in exports for points saved without a source.
const UnknownSource = "Desconhecido"

// Point is a saved coordinate. Points are never updated in place.
type Point struct {
	id         int64
	documentID string
	name       string
	x, y       float64
	page       int
	createdAt  time.Time
	source     *string
	filename   string
}

// New validates the caller-supplied fields of a Point that has not been stored yet.
// source may be nil; the store fills it with the document filename.
func New(documentID, name string, x, y float64, page int, source *string) (Point, error) {
	if documentID == "" {
		return Point{}, domain.InvalidArgument("document ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Point{}, domain.InvalidArgument("name is required")
	}
	if len(name) > MaxNameLength {
		return Point{}, domain.InvalidArgument("name too long (max %d)", MaxNameLength)
	}
	if !finite(x) || !finite(y) {
		return Point{}, domain.InvalidArgument("coordinates must be finite numbers")
	}
	if page < 1 {
		return Point{}, domain.InvalidArgument("page must be >= 1, got %d", page)
	}
	if source != nil && strings.TrimSpace(*source) == "" {
		source = nil
	}

	return Point{documentID: documentID, name: name, x: x, y: y, page: page, source: source}, nil
}

// Reconstruct creates a Point without validation (storage hydration).
// filename is the parent document filename when the query joined it, else "".
func Reconstruct(
	id int64, documentID, name string, x, y float64, page int,
	createdAt time.Time, source *string, filename string,
) Point {
	return Point{
		id: id, documentID: documentID, name: name, x: x, y: y, page: page,
		createdAt: createdAt, source: source, filename: filename,
	}
}

// ID returns the store-assigned identifier (0 before insert).
func (p *Point) ID() int64 { return p.id }

// DocumentID returns the parent document identifier.
func (p *Point) DocumentID() string { return p.documentID }

// Name returns the point name, unique within its document.
func (p *Point) Name() string { return p.name }

// X returns the horizontal coordinate.
func (p *Point) X() float64 { return p.x }

// Y returns the vertical coordinate.
func (p *Point) Y() float64 { return p.y }

// Page returns the 1-based page number.
func (p *Point) Page() int { return p.page }

// CreatedAt returns the insert time.
func (p *Point) CreatedAt() time.Time { return p.createdAt }

// Source returns the source label, nil when absent.
func (p *Point) Source() *string { return p.source }

// SourceOrUnknown returns the source label or UnknownSource.
func (p *Point) SourceOrUnknown() string {
	if p.source == nil {
		return UnknownSource
	}
	return *p.source
}

// Filename returns the parent document filename when it was loaded with the point.
func (p *Point) Filename() string { return p.filename }

// WithSource returns a copy whose source is set to s when it has none.
func (p *Point) WithSource(s string) Point {
	c := *p
	if c.source == nil {
		c.source = &s
	}
	return c
}

// Matches reports whether q is a case-insensitive substring of the name or source.
// An empty query matches everything.
func (p *Point) Matches(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(p.name), q) {
		return true
	}
	return p.source != nil && strings.Contains(strings.ToLower(*p.source), q)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
