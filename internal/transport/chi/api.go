package chi

import (
	"time"

	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeDocumentNotFound  ErrorCode = "document_not_found"
	ErrorCodePointNotFound     ErrorCode = "point_not_found"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodePointNameConflict ErrorCode = "point_name_conflict"
	ErrorCodeConflict          ErrorCode = "conflict"
	ErrorCodePayloadTooLarge   ErrorCode = "payload_too_large"
	ErrorCodeInternalError     ErrorCode = "internal_error"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DocumentResponse describes a registered document.
type DocumentResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	UploadedAt   time.Time `json:"uploaded_at"`
	PageCount    int       `json:"page_count"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// DocumentListResponse is the body of GET /documents.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
}

// PageResponse describes one rendered page.
type PageResponse struct {
	Page     int    `json:"page"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ImageURL string `json:"image_url"`
}

// IngestResponse is the body of POST /documents.
type IngestResponse struct {
	Document DocumentResponse `json:"document"`
	Pages    []PageResponse   `json:"pages"`
	Scale    float64          `json:"scale"`
}

// SavePointRequest is the body of POST /documents/{id}/points.
type SavePointRequest struct {
	Name   string   `json:"name"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Page   *int     `json:"page"`
	Source *string  `json:"source,omitempty"`
}

// PointResponse describes a saved point.
type PointResponse struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Page       int       `json:"page"`
	CreatedAt  time.Time `json:"created_at"`
	Source     *string   `json:"source"`
	Filename   string    `json:"filename,omitempty"`
}

// PointListResponse is the body of the point list endpoints.
type PointListResponse struct {
	Items []PointResponse `json:"items"`
}

// DeleteResponse is the body of DELETE /points/{id}.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// LookupResponse is the body of the lookup endpoint.
type LookupResponse struct {
	Page      int           `json:"page"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Tolerance float64       `json:"tolerance"`
	Tokens    []token.Token `json:"tokens"`
}

// TransformDirection selects the conversion of POST /transform.
type TransformDirection string

// Transform directions.
const (
	TransformToPixel TransformDirection = "to_pixel"
	TransformToPage  TransformDirection = "to_page"
)

// TransformRequest is the body of POST /transform.
type TransformRequest struct {
	Direction  TransformDirection `json:"direction"`
	X          float64            `json:"x"`
	Y          float64            `json:"y"`
	PageHeight float64            `json:"page_height"`
	Scale      float64            `json:"scale"`
}

// TransformResponse is the converted coordinate.
type TransformResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	Tokens    []token.Token `json:"tokens"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Tolerance *float64      `json:"tolerance,omitempty"`
}

// MatchResponse holds the tokens within tolerance, in input order.
type MatchResponse struct {
	Tokens []token.Token `json:"tokens"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ZoomParams are the query parameters of the zoom endpoint.
type ZoomParams struct {
	X     float64 `form:"x" json:"x"`
	Y     float64 `form:"y" json:"y"`
	Level *int    `form:"level,omitempty" json:"level,omitempty"`
}

// LookupParams are the query parameters of the lookup endpoint.
type LookupParams struct {
	X         float64  `form:"x" json:"x"`
	Y         float64  `form:"y" json:"y"`
	Space     *string  `form:"space,omitempty" json:"space,omitempty"`
	Scale     *float64 `form:"scale,omitempty" json:"scale,omitempty"`
	Tolerance *float64 `form:"tolerance,omitempty" json:"tolerance,omitempty"`
}

// ListPointsParams are the query parameters of GET /points.
type ListPointsParams struct {
	Q *string `form:"q,omitempty" json:"q,omitempty"`
}
