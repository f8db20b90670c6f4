package pagemark

import (
	"context"
	"fmt"
	"time"

	pointuc "github.com/kailas-cloud/pagemark/internal/usecase/point"
)

// PointService saves, lists, deletes and exports points.
type PointService struct {
	svc pointUseCase
	obs *observer
}

// Save stores a new point. Fails with ErrDocumentNotFound for an unknown
// document and ErrPointNameConflict for a duplicate name within the document.
func (s *PointService) Save(ctx context.Context, in SavePoint) (_ Point, err error) {
	start := time.Now()
	defer func() { s.obs.observe("point.save", start, err) }()

	p, err := s.svc.Save(ctx, pointuc.SaveInput{
		DocumentID: in.DocumentID,
		Name:       in.Name,
		X:          in.X,
		Y:          in.Y,
		Page:       in.Page,
		Source:     in.Source,
	})
	if err != nil {
		return Point{}, fmt.Errorf("save point: %w", err)
	}
	return fromInternalPoint(p), nil
}

// ListAll returns every point with its document filename, newest first.
// A non-empty query filters by name or source (case-insensitive substring).
func (s *PointService) ListAll(ctx context.Context, query string) (_ []Point, err error) {
	start := time.Now()
	defer func() { s.obs.observe("point.list_all", start, err) }()

	points, err := s.svc.ListAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return fromInternalPoints(points), nil
}

// ListByDocument returns the points of one document, newest first.
// An unknown document yields an empty list.
func (s *PointService) ListByDocument(ctx context.Context, documentID string) (_ []Point, err error) {
	start := time.Now()
	defer func() { s.obs.observe("point.list_by_document", start, err) }()

	points, err := s.svc.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document points: %w", err)
	}
	return fromInternalPoints(points), nil
}

// Delete removes a point. Fails with ErrPointNotFound.
func (s *PointService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("point.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

// ExportCSV renders the points of a document as CSV, oldest first, with the
// header id,name,x,y,page,created_at,source.
func (s *PointService) ExportCSV(ctx context.Context, documentID string) (_ []byte, err error) {
	start := time.Now()
	defer func() { s.obs.observe("point.export_csv", start, err) }()

	data, err := s.svc.ExportCSV(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("export points: %w", err)
	}
	return data, nil
}
