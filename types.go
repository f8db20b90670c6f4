package pagemark

import (
	"time"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

// Document is a registered source PDF.
type Document struct {
	ID           string
	Filename     string
	UploadedAt   time.Time
	PageCount    int
	ThumbnailRef string
}

// Point is a saved, named coordinate on a document page.
type Point struct {
	ID         int64
	DocumentID string
	Name       string
	X, Y       float64
	Page       int
	CreatedAt  time.Time
	Source     *string
	// Filename is set by Points().ListAll only.
	Filename string
}

// RegisterDocument carries the fields of a new document.
// ThumbnailRef names the thumbnail asset, if one was rendered; empty means none.
type RegisterDocument struct {
	Filename     string
	PageCount    int
	ThumbnailRef string
}

// SavePoint carries the fields of a new point.
// A nil Source defaults to the document filename.
type SavePoint struct {
	DocumentID string
	Name       string
	X, Y       float64
	Page       int
	Source     *string
}

// Token is a run of page text with its bounding box in page points.
type Token = token.Token

// Box is a token bounding box; (X0, Y0) is the baseline's left end (bottom-left)
// and is the origin used for matching.
type Box = token.Box

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:           d.ID(),
		Filename:     d.Filename(),
		UploadedAt:   d.UploadedAt(),
		PageCount:    d.PageCount(),
		ThumbnailRef: d.ThumbnailRef(),
	}
}

func fromInternalPoint(p dompoint.Point) Point {
	return Point{
		ID:         p.ID(),
		DocumentID: p.DocumentID(),
		Name:       p.Name(),
		X:          p.X(),
		Y:          p.Y(),
		Page:       p.Page(),
		CreatedAt:  p.CreatedAt(),
		Source:     p.Source(),
		Filename:   p.Filename(),
	}
}

func fromInternalPoints(points []dompoint.Point) []Point {
	out := make([]Point, len(points))
	for i := range points {
		out[i] = fromInternalPoint(points[i])
	}
	return out
}
