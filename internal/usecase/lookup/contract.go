package lookup

import (
	"context"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

// DocumentReader reads documents for existence and page range checks.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}

// TextExtractor returns the positioned text of one page of a registered document.
type TextExtractor interface {
	Extract(ctx context.Context, documentID string, page int) (token.Page, error)
}
