package point

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/pagemark/internal/db"
	"github.com/kailas-cloud/pagemark/internal/domain"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
)

// store is the consumer interface for points (ISP).
type store interface {
	Exec(ctx context.Context, query string, args ...any) (db.ExecResult, error)
	Query(ctx context.Context, scan func(db.Scanner) error, query string, args ...any) error
	QueryRow(ctx context.Context, scan func(db.Scanner) error, query string, args ...any) error
}

// Repo implements usecase/point.Repository.
type Repo struct {
	store store
}

// New creates a point repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

const selectColumns = "p.id, p.document_id, p.name, p.x, p.y, p.page, p.created_at, p.source, d.filename"

// Create inserts p and returns it with the assigned id and createdAt.
// The name must be unique within the document.
func (r *Repo) Create(ctx context.Context, p *dompoint.Point, createdAt time.Time) (dompoint.Point, error) {
	res, err := r.store.Exec(ctx,
		`INSERT INTO points (document_id, name, x, y, page, created_at, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.DocumentID(), p.Name(), p.X(), p.Y(), p.Page(), createdAt.UnixMilli(), nullString(p.Source()),
	)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrKeyExists):
			return dompoint.Point{}, fmt.Errorf("%q in document %s: %w", p.Name(), p.DocumentID(), domain.ErrPointNameConflict)
		case errors.Is(err, db.ErrForeignKey):
			return dompoint.Point{}, fmt.Errorf("%s: %w", p.DocumentID(), domain.ErrDocumentNotFound)
		default:
			return dompoint.Point{}, domain.NewStorageError("insert point", err)
		}
	}

	created := time.UnixMilli(createdAt.UnixMilli()).UTC()
	return dompoint.Reconstruct(
		res.LastInsertID, p.DocumentID(), p.Name(), p.X(), p.Y(), p.Page(), created, p.Source(), "",
	), nil
}

// ListAll returns every point with its document filename, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]dompoint.Point, error) {
	return r.list(ctx, "list points",
		"SELECT "+selectColumns+` FROM points p JOIN documents d ON d.id = p.document_id
		 ORDER BY p.created_at DESC, p.id DESC`)
}

// ListByDocument returns the points of one document, newest first.
// An unknown document yields an empty list.
func (r *Repo) ListByDocument(ctx context.Context, documentID string) ([]dompoint.Point, error) {
	return r.list(ctx, "list document points",
		"SELECT "+selectColumns+` FROM points p JOIN documents d ON d.id = p.document_id
		 WHERE p.document_id = ? ORDER BY p.created_at DESC, p.id DESC`, documentID)
}

// ListByDocumentOldestFirst returns the points of one document in creation order.
func (r *Repo) ListByDocumentOldestFirst(ctx context.Context, documentID string) ([]dompoint.Point, error) {
	return r.list(ctx, "export document points",
		"SELECT "+selectColumns+` FROM points p JOIN documents d ON d.id = p.document_id
		 WHERE p.document_id = ? ORDER BY p.created_at ASC, p.id ASC`, documentID)
}

// Delete removes a point by id.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.store.Exec(ctx, "DELETE FROM points WHERE id = ?", id)
	if err != nil {
		return domain.NewStorageError("delete point", err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %d: %w", id, domain.ErrPointNotFound)
	}
	return nil
}

func (r *Repo) list(ctx context.Context, op, query string, args ...any) ([]dompoint.Point, error) {
	points := make([]dompoint.Point, 0)
	err := r.store.Query(ctx, func(s db.Scanner) error {
		p, err := scanPoint(s)
		if err != nil {
			return err
		}
		points = append(points, p)
		return nil
	}, query, args...)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return points, nil
}

func scanPoint(s db.Scanner) (dompoint.Point, error) {
	var (
		id          int64
		docID, name string
		x, y        float64
		page        int
		createdMS   int64
		source      sql.NullString
		filename    string
	)
	if err := s.Scan(&id, &docID, &name, &x, &y, &page, &createdMS, &source, &filename); err != nil {
		return dompoint.Point{}, err
	}
	var src *string
	if source.Valid {
		src = &source.String
	}
	return dompoint.Reconstruct(id, docID, name, x, y, page, time.UnixMilli(createdMS).UTC(), src, filename), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
