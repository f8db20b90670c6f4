package point

import (
	"context"
	"time"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
)

// Repository defines the storage contract for points.
type Repository interface {
	Create(ctx context.Context, p *dompoint.Point, createdAt time.Time) (dompoint.Point, error)
	ListAll(ctx context.Context) ([]dompoint.Point, error)
	ListByDocument(ctx context.Context, documentID string) ([]dompoint.Point, error)
	ListByDocumentOldestFirst(ctx context.Context, documentID string) ([]dompoint.Point, error)
	Delete(ctx context.Context, id int64) error
}

// DocumentReader reads documents for existence checks and source defaults.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}
