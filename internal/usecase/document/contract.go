package document

import (
	"context"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
}
