package pagemark

import (
	"context"
	"fmt"
	"time"
)

// DocumentService registers and reads documents.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Register records a document with a generated ID and the current time.
func (s *DocumentService) Register(ctx context.Context, in RegisterDocument) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.register", start, err) }()

	d, err := s.svc.Register(ctx, in.Filename, in.PageCount, in.ThumbnailRef)
	if err != nil {
		return Document{}, fmt.Errorf("register document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// Get returns a document by ID. Fails with ErrDocumentNotFound.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// List returns every document, newest first.
func (s *DocumentService) List(ctx context.Context) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err) }()

	docs, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromInternalDocument(d)
	}
	return out, nil
}
