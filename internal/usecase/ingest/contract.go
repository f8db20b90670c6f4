package ingest

import (
	"context"
	"image"
	"io"

	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
)

// Rasterizer renders every page of a PDF file.
type Rasterizer interface {
	Render(ctx context.Context, path string, scale float64, fn func(page int, img image.Image) error) (int, error)
}

// BlobStore holds staged and promoted document assets.
type BlobStore interface {
	Put(key string, r io.Reader) error
	Path(key string) (string, error)
	Rename(from, to string) error
	RemoveAll(key string) error
}

// Registry records the ingested document.
type Registry interface {
	Register(ctx context.Context, filename string, pageCount int, thumbnailRef string) (domdoc.Document, error)
}
