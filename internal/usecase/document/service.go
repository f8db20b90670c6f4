// Package document is the document registry: it records uploaded PDFs.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

// Service registers and reads documents.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New creates a registry service.
func New(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides the time source used for uploadedAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithIDGenerator overrides document ID generation.
func (s *Service) WithIDGenerator(newID func() string) *Service {
	if newID != nil {
		s.newID = newID
	}
	return s
}

// Register records a new document with a generated ID and the current time.
func (s *Service) Register(ctx context.Context, filename string, pageCount int, thumbnailRef string) (domdoc.Document, error) {
	doc, err := domdoc.New(s.newID(), filename, pageCount, thumbnailRef, s.now())
	if err != nil {
		return domdoc.Document{}, err
	}
	if err := s.repo.Create(ctx, &doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("create document: %w", err)
	}
	metrics.DocumentsRegisteredTotal.Inc()
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *Service) List(ctx context.Context) ([]domdoc.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
