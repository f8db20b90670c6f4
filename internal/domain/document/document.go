package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/pagemark/internal/domain"
)

// MaxFilenameLength bounds the stored filename.
const MaxFilenameLength = 255

// Document is an uploaded source PDF (immutable value object).
type Document struct {
	id           string
	filename     string
	uploadedAt   time.Time
	pageCount    int
	thumbnailRef string
}

// New validates and creates a Document.
// Filename: non-empty, max 255 chars. PageCount: positive.
func New(id, filename string, pageCount int, thumbnailRef string, uploadedAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, domain.InvalidArgument("document ID is required")
	}
	if strings.TrimSpace(filename) == "" {
		return Document{}, domain.InvalidArgument("filename is required")
	}
	if len(filename) > MaxFilenameLength {
		return Document{}, domain.InvalidArgument("filename too long (max %d)", MaxFilenameLength)
	}
	if pageCount <= 0 {
		return Document{}, domain.InvalidArgument("page count must be positive, got %d", pageCount)
	}

	return Document{
		id:           id,
		filename:     filename,
		uploadedAt:   uploadedAt.UTC(),
		pageCount:    pageCount,
		thumbnailRef: thumbnailRef,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, filename string, uploadedAt time.Time, pageCount int, thumbnailRef string) Document {
	return Document{
		id: id, filename: filename, uploadedAt: uploadedAt,
		pageCount: pageCount, thumbnailRef: thumbnailRef,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Filename returns the name the document was uploaded under.
func (d *Document) Filename() string { return d.filename }

// UploadedAt returns the registration time.
func (d *Document) UploadedAt() time.Time { return d.uploadedAt }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.pageCount }

// ThumbnailRef returns the reference to the rendered thumbnail asset.
func (d *Document) ThumbnailRef() string { return d.thumbnailRef }

// HasPage reports whether page (1-based) exists in the document.
func (d *Document) HasPage(page int) bool { return page >= 1 && page <= d.pageCount }

// CheckPage returns ErrPageNotFound when page is outside the document.
func (d *Document) CheckPage(page int) error {
	if !d.HasPage(page) {
		return fmt.Errorf("page %d of %d: %w", page, d.pageCount, domain.ErrPageNotFound)
	}
	return nil
}
