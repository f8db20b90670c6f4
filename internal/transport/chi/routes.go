package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ParamError reports a path or query parameter that failed to bind.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string { return fmt.Sprintf("invalid parameter %q: %v", e.Param, e.Err) }

func (e *ParamError) Unwrap() error { return e.Err }

// RouterOptions configures Handler.
type RouterOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts the API routes and returns the router.
func Handler(s *Server, opts RouterOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		}
	}
	wr := &wrapper{s: s, onError: opts.ErrorHandlerFunc}

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/transform", s.Transform)
	r.Post("/match", s.Match)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.UploadDocument)
		r.Get("/", s.ListDocuments)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", wr.getDocument)
			r.Get("/thumbnail", wr.getThumbnail)
			r.Get("/pages/{page}/image", wr.getPageImage)
			r.Get("/pages/{page}/zoom", wr.getPageZoom)
			r.Get("/pages/{page}/lookup", wr.lookupPage)
			r.Post("/points", wr.savePoint)
			r.Get("/points", wr.listDocumentPoints)
			r.Get("/points/export", wr.exportDocumentPoints)
		})
	})

	r.Get("/points", wr.listPoints)
	r.Delete("/points/{id}", wr.deletePoint)

	return r
}

// wrapper binds path and query parameters before calling the Server.
type wrapper struct {
	s       *Server
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

func (wr *wrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		wr.onError(w, r, &ParamError{Param: name, Err: err})
		return false
	}
	return true
}

func (wr *wrapper) queryParam(w http.ResponseWriter, r *http.Request, name string, required bool, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		wr.onError(w, r, &ParamError{Param: name, Err: err})
		return false
	}
	return true
}

func (wr *wrapper) documentPage(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	var (
		id   string
		page int
	)
	if !wr.pathParam(w, r, "id", &id) || !wr.pathParam(w, r, "page", &page) {
		return "", 0, false
	}
	return id, page, true
}

func (wr *wrapper) getDocument(w http.ResponseWriter, r *http.Request) {
	var id string
	if wr.pathParam(w, r, "id", &id) {
		wr.s.GetDocument(w, r, id)
	}
}

func (wr *wrapper) getThumbnail(w http.ResponseWriter, r *http.Request) {
	var id string
	if wr.pathParam(w, r, "id", &id) {
		wr.s.GetThumbnail(w, r, id)
	}
}

func (wr *wrapper) getPageImage(w http.ResponseWriter, r *http.Request) {
	if id, page, ok := wr.documentPage(w, r); ok {
		wr.s.GetPageImage(w, r, id, page)
	}
}

func (wr *wrapper) getPageZoom(w http.ResponseWriter, r *http.Request) {
	id, page, ok := wr.documentPage(w, r)
	if !ok {
		return
	}
	var params ZoomParams
	if !wr.queryParam(w, r, "x", true, &params.X) ||
		!wr.queryParam(w, r, "y", true, &params.Y) ||
		!wr.queryParam(w, r, "level", false, &params.Level) {
		return
	}
	wr.s.GetPageZoom(w, r, id, page, params)
}

func (wr *wrapper) lookupPage(w http.ResponseWriter, r *http.Request) {
	id, page, ok := wr.documentPage(w, r)
	if !ok {
		return
	}
	var params LookupParams
	if !wr.queryParam(w, r, "x", true, &params.X) ||
		!wr.queryParam(w, r, "y", true, &params.Y) ||
		!wr.queryParam(w, r, "space", false, &params.Space) ||
		!wr.queryParam(w, r, "scale", false, &params.Scale) ||
		!wr.queryParam(w, r, "tolerance", false, &params.Tolerance) {
		return
	}
	wr.s.LookupPage(w, r, id, page, params)
}

func (wr *wrapper) savePoint(w http.ResponseWriter, r *http.Request) {
	var id string
	if wr.pathParam(w, r, "id", &id) {
		wr.s.SavePoint(w, r, id)
	}
}

func (wr *wrapper) listDocumentPoints(w http.ResponseWriter, r *http.Request) {
	var id string
	if wr.pathParam(w, r, "id", &id) {
		wr.s.ListDocumentPoints(w, r, id)
	}
}

func (wr *wrapper) exportDocumentPoints(w http.ResponseWriter, r *http.Request) {
	var id string
	if wr.pathParam(w, r, "id", &id) {
		wr.s.ExportDocumentPoints(w, r, id)
	}
}

func (wr *wrapper) listPoints(w http.ResponseWriter, r *http.Request) {
	var params ListPointsParams
	if wr.queryParam(w, r, "q", false, &params.Q) {
		wr.s.ListPoints(w, r, params)
	}
}

func (wr *wrapper) deletePoint(w http.ResponseWriter, r *http.Request) {
	var id int64
	if wr.pathParam(w, r, "id", &id) {
		wr.s.DeletePoint(w, r, id)
	}
}
