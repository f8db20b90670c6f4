package pagemark

import "github.com/kailas-cloud/pagemark/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrConflict          = domain.ErrConflict
	ErrInvalidArgument   = domain.ErrInvalidArgument
	ErrStorage           = domain.ErrStorage
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrPointNotFound     = domain.ErrPointNotFound
	ErrPageNotFound      = domain.ErrPageNotFound
	ErrPointNameConflict = domain.ErrPointNameConflict
)
