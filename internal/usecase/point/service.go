// Package point manages named coordinates saved on documents.
package point

import (
	"bytes"
	"context"
	"fmt"
	"time"

	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

// SaveInput carries the caller-supplied fields of a new point.
// A nil Source defaults to the document filename.
type SaveInput struct {
	DocumentID string
	Name       string
	X, Y       float64
	Page       int
	Source     *string
}

// Service handles point persistence and export.
type Service struct {
	repo Repository
	docs DocumentReader
	now  func() time.Time
}

// New creates a point service.
func New(repo Repository, docs DocumentReader) *Service {
	return &Service{repo: repo, docs: docs, now: time.Now}
}

// WithClock overrides the time source used for createdAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Save stores a new point. Fails with ErrDocumentNotFound for an unknown document
// and ErrPointNameConflict when the document already has a point with that name.
func (s *Service) Save(ctx context.Context, in SaveInput) (dompoint.Point, error) {
	p, err := dompoint.New(in.DocumentID, in.Name, in.X, in.Y, in.Page, in.Source)
	if err != nil {
		return dompoint.Point{}, err
	}

	doc, err := s.docs.Get(ctx, in.DocumentID)
	if err != nil {
		return dompoint.Point{}, fmt.Errorf("resolve source document: %w", err)
	}

	p = p.WithSource(doc.Filename())
	saved, err := s.repo.Create(ctx, &p, s.now())
	if err != nil {
		return dompoint.Point{}, fmt.Errorf("create point: %w", err)
	}
	metrics.PointsSavedTotal.Inc()
	return saved, nil
}

// ListAll returns every point with its document filename, newest first.
// A non-empty query keeps only points whose name or source contains it (case-insensitive).
func (s *Service) ListAll(ctx context.Context, query string) ([]dompoint.Point, error) {
	points, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	if query == "" {
		return points, nil
	}

	filtered := make([]dompoint.Point, 0, len(points))
	for i := range points {
		if points[i].Matches(query) {
			filtered = append(filtered, points[i])
		}
	}
	return filtered, nil
}

// ListByDocument returns the points of one document, newest first.
// Unknown documents yield an empty list.
func (s *Service) ListByDocument(ctx context.Context, documentID string) ([]dompoint.Point, error) {
	points, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document points: %w", err)
	}
	return points, nil
}

// Delete removes a point permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

// ExportCSV renders the points of a document as CSV, oldest first.
func (s *Service) ExportCSV(ctx context.Context, documentID string) ([]byte, error) {
	if _, err := s.docs.Get(ctx, documentID); err != nil {
		return nil, fmt.Errorf("resolve exported document: %w", err)
	}

	points, err := s.repo.ListByDocumentOldestFirst(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document points: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, points); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
