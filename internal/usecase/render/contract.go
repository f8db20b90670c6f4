package render

import (
	"context"
	"io"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
)

// DocumentReader reads documents for existence and page range checks.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}

// BlobReader opens stored document assets.
type BlobReader interface {
	Open(key string) (io.ReadCloser, error)
}
