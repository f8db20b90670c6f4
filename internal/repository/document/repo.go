package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/pagemark/internal/db"
	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	Exec(ctx context.Context, query string, args ...any) (db.ExecResult, error)
	Query(ctx context.Context, scan func(db.Scanner) error, query string, args ...any) error
	QueryRow(ctx context.Context, scan func(db.Scanner) error, query string, args ...any) error
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

const selectColumns = "id, filename, uploaded_at, page_count, thumbnail_ref"

// Create inserts a new document.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document) error {
	_, err := r.store.Exec(ctx,
		"INSERT INTO documents ("+selectColumns+") VALUES (?, ?, ?, ?, ?)",
		doc.ID(), doc.Filename(), doc.UploadedAt().UnixMilli(), doc.PageCount(), doc.ThumbnailRef(),
	)
	if err != nil {
		if errors.Is(err, db.ErrKeyExists) {
			return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrConflict)
		}
		return domain.NewStorageError("insert document", err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	var doc domdoc.Document
	err := r.store.QueryRow(ctx, func(s db.Scanner) error {
		var err error
		doc, err = scanDocument(s)
		return err
	}, "SELECT "+selectColumns+" FROM documents WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, domain.NewStorageError("select document", err)
	}
	return doc, nil
}

// List returns all documents, newest upload first.
func (r *Repo) List(ctx context.Context) ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, 0)
	err := r.store.Query(ctx, func(s db.Scanner) error {
		doc, err := scanDocument(s)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	}, "SELECT "+selectColumns+" FROM documents ORDER BY uploaded_at DESC, rowid DESC")
	if err != nil {
		return nil, domain.NewStorageError("list documents", err)
	}
	return docs, nil
}

func scanDocument(s db.Scanner) (domdoc.Document, error) {
	var (
		id, filename, thumb string
		uploadedMS          int64
		pages               int
	)
	if err := s.Scan(&id, &filename, &uploadedMS, &pages, &thumb); err != nil {
		return domdoc.Document{}, err
	}
	return domdoc.Reconstruct(id, filename, time.UnixMilli(uploadedMS).UTC(), pages, thumb), nil
}
