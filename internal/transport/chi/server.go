// Package chi implements the HTTP API on the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/domain/geometry"
	"github.com/kailas-cloud/pagemark/internal/domain/match"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
	"github.com/kailas-cloud/pagemark/internal/logger"
	documentuc "github.com/kailas-cloud/pagemark/internal/usecase/document"
	healthuc "github.com/kailas-cloud/pagemark/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/pagemark/internal/usecase/ingest"
	lookupuc "github.com/kailas-cloud/pagemark/internal/usecase/lookup"
	pointuc "github.com/kailas-cloud/pagemark/internal/usecase/point"
	renderuc "github.com/kailas-cloud/pagemark/internal/usecase/render"
)

const (
	defaultMaxUploadBytes = 50 << 20
	defaultZoomLevel      = 2
	exportFilename        = "coordenadas.csv"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the use case services behind the HTTP API.
type Server struct {
	documents      *documentuc.Service
	points         *pointuc.Service
	ingest         *ingestuc.Service
	render         *renderuc.Service
	lookup         *lookupuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	points *pointuc.Service,
	ingest *ingestuc.Service,
	render *renderuc.Service,
	lookup *lookupuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents:      documents,
		points:         points,
		ingest:         ingest,
		render:         render,
		lookup:         lookup,
		health:         health,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		payloadTooLargeHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrPointNotFound, http.StatusNotFound, ErrorCodePointNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrPointNameConflict, http.StatusConflict, ErrorCodePointNameConflict),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, ErrorCodeConflict),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// WithMaxUploadBytes bounds the size of uploaded PDFs.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// UploadDocument handles POST /documents (multipart field "file").
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "expected multipart/form-data with a file field")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.handleDomainError(w, r, fmt.Errorf("read multipart: %w", err))
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		res, err := s.ingest.Ingest(r.Context(), part.FileName(), part)
		_ = part.Close()
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}

		pages := make([]PageResponse, len(res.Pages))
		for i, p := range res.Pages {
			pages[i] = PageResponse{
				Page:     p.Page,
				Width:    p.Width,
				Height:   p.Height,
				ImageURL: pageImageURL(res.Document.ID(), p.Page),
			}
		}
		w.Header().Set("Location", "/documents/"+res.Document.ID())
		writeJSON(w, http.StatusCreated, IngestResponse{
			Document: documentToResponse(&res.Document),
			Pages:    pages,
			Scale:    s.ingest.Scale(),
		})
		return
	}

	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "file field is required")
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Items: items})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// GetThumbnail handles GET /documents/{id}/thumbnail.
func (s *Server) GetThumbnail(w http.ResponseWriter, r *http.Request, id string) {
	rc, err := s.render.Thumbnail(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()
	writePNG(w, rc)
}

// GetPageImage handles GET /documents/{id}/pages/{page}/image.
func (s *Server) GetPageImage(w http.ResponseWriter, r *http.Request, id string, page int) {
	rc, err := s.render.PageImage(r.Context(), id, page)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()
	writePNG(w, rc)
}

// GetPageZoom handles GET /documents/{id}/pages/{page}/zoom.
func (s *Server) GetPageZoom(w http.ResponseWriter, r *http.Request, id string, page int, params ZoomParams) {
	level := defaultZoomLevel
	if params.Level != nil {
		level = *params.Level
	}

	out, err := s.render.Zoom(r.Context(), id, page, params.X, params.Y, level)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// LookupPage handles GET /documents/{id}/pages/{page}/lookup.
func (s *Server) LookupPage(w http.ResponseWriter, r *http.Request, id string, page int, params LookupParams) {
	space, err := lookupuc.ParseSpace(deref(params.Space))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.lookup.Lookup(r.Context(), lookupuc.Query{
		DocumentID: id,
		Page:       page,
		X:          params.X,
		Y:          params.Y,
		Space:      space,
		Scale:      deref(params.Scale),
		Tolerance:  params.Tolerance,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LookupResponse{
		Page:      res.Page,
		X:         res.X,
		Y:         res.Y,
		Tolerance: res.Tolerance,
		Tokens:    res.Tokens,
	})
}

// SavePoint handles POST /documents/{id}/points.
func (s *Server) SavePoint(w http.ResponseWriter, r *http.Request, id string) {
	var req SavePointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.X == nil || req.Y == nil || req.Page == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "x, y and page are required")
		return
	}

	p, err := s.points.Save(r.Context(), pointuc.SaveInput{
		DocumentID: id,
		Name:       req.Name,
		X:          *req.X,
		Y:          *req.Y,
		Page:       *req.Page,
		Source:     req.Source,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/points/"+strconv.FormatInt(p.ID(), 10))
	writeJSON(w, http.StatusCreated, pointToResponse(&p))
}

// ListDocumentPoints handles GET /documents/{id}/points.
func (s *Server) ListDocumentPoints(w http.ResponseWriter, r *http.Request, id string) {
	points, err := s.points.ListByDocument(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pointsToResponse(points))
}

// ExportDocumentPoints handles GET /documents/{id}/points/export.
func (s *Server) ExportDocumentPoints(w http.ResponseWriter, r *http.Request, id string) {
	out, err := s.points.ExportCSV(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// ListPoints handles GET /points.
func (s *Server) ListPoints(w http.ResponseWriter, r *http.Request, params ListPointsParams) {
	points, err := s.points.ListAll(r.Context(), deref(params.Q))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pointsToResponse(points))
}

// DeletePoint handles DELETE /points/{id}.
func (s *Server) DeletePoint(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.points.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

// Transform handles POST /transform.
func (s *Server) Transform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var (
		x, y float64
		err  error
	)
	switch req.Direction {
	case TransformToPixel:
		x, y, err = geometry.ToPixel(req.X, req.Y, req.PageHeight, req.Scale)
	case TransformToPage:
		x, y, err = geometry.ToPage(req.X, req.Y, req.PageHeight, req.Scale)
	default:
		err = domain.InvalidArgument("direction must be %q or %q", TransformToPixel, TransformToPage)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{X: x, Y: y})
}

// Match handles POST /match.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	tolerance := match.DefaultTolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}

	tokens, err := match.Match(req.Tokens, req.X, req.Y, tolerance)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{Tokens: tokens})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writePNG(w http.ResponseWriter, rc io.Reader) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation failures carry their full text since it describes the caller's input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidArgument) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrPointNotFound,
		domain.ErrPageNotFound,
		domain.ErrNotFound,
		domain.ErrPointNameConflict,
		domain.ErrConflict,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// payloadTooLargeHandler handles uploads cut off by http.MaxBytesReader.
func payloadTooLargeHandler(w http.ResponseWriter, err error, _ string) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
		fmt.Sprintf("upload exceeds %d bytes", mbe.Limit))
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func documentToResponse(d *domdoc.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:         d.ID(),
		Filename:   d.Filename(),
		UploadedAt: d.UploadedAt(),
		PageCount:  d.PageCount(),
	}
	if d.ThumbnailRef() != "" {
		resp.ThumbnailURL = "/documents/" + d.ID() + "/thumbnail"
	}
	return resp
}

func pageImageURL(documentID string, page int) string {
	return fmt.Sprintf("/documents/%s/pages/%d/image", documentID, page)
}

func pointToResponse(p *dompoint.Point) PointResponse {
	return PointResponse{
		ID:         p.ID(),
		DocumentID: p.DocumentID(),
		Name:       p.Name(),
		X:          p.X(),
		Y:          p.Y(),
		Page:       p.Page(),
		CreatedAt:  p.CreatedAt(),
		Source:     p.Source(),
		Filename:   p.Filename(),
	}
}

func pointsToResponse(points []dompoint.Point) PointListResponse {
	items := make([]PointResponse, len(points))
	for i := range points {
		items[i] = pointToResponse(&points[i])
	}
	return PointListResponse{Items: items}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
