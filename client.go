package pagemark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/pagemark/internal/db"
	"github.com/kailas-cloud/pagemark/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/domain/geometry"
	"github.com/kailas-cloud/pagemark/internal/domain/match"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
	documentrepo "github.com/kailas-cloud/pagemark/internal/repository/document"
	pointrepo "github.com/kailas-cloud/pagemark/internal/repository/point"
	documentuc "github.com/kailas-cloud/pagemark/internal/usecase/document"
	healthuc "github.com/kailas-cloud/pagemark/internal/usecase/health"
	pointuc "github.com/kailas-cloud/pagemark/internal/usecase/point"
)

const defaultReadinessTimeout = 10 * time.Second

// DefaultTolerance is the match window half-size, in page points.
const DefaultTolerance = match.DefaultTolerance

// Use-case seams, substituted in tests.
type documentUseCase interface {
	Register(ctx context.Context, filename string, pageCount int, thumbnailRef string) (domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
}

type pointUseCase interface {
	Save(ctx context.Context, in pointuc.SaveInput) (dompoint.Point, error)
	ListAll(ctx context.Context, query string) ([]dompoint.Point, error)
	ListByDocument(ctx context.Context, documentID string) ([]dompoint.Point, error)
	Delete(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context, documentID string) ([]byte, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the pagemark entry point.
type Client struct {
	store     db.RelationalStore
	docSvc    documentUseCase
	pointSvc  pointUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the database, applies pending migrations and wires the services.
// The provided context is used for migrations and the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.path == "" {
		return nil, errors.New("pagemark: database path required (use WithSQLite)")
	}

	store, err := sqlite.NewStore(ctx, sqlite.Config{
		Path:          cfg.path,
		BusyTimeoutMS: cfg.busyTimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("pagemark: open sqlite store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("pagemark: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.RelationalStore, cfg *clientConfig, obs *observer) *Client {
	docSvc := documentuc.New(documentrepo.New(store)).WithClock(cfg.clock)
	pointSvc := pointuc.New(pointrepo.New(store), docSvc).WithClock(cfg.clock)

	return &Client{
		store:     store,
		docSvc:    docSvc,
		pointSvc:  pointSvc,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}
}

// Close releases the database handle.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "error"
	Checks map[string]string // component → "ok"/"error"
}

// Health checks the health of the database.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Documents returns the document registry.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Points returns the point store.
func (c *Client) Points() *PointService {
	return &PointService{svc: c.pointSvc, obs: c.obs}
}

// ToPixel maps page-space (points, origin bottom-left) to image pixels
// (origin top-left) for a page rendered at scale.
func ToPixel(pageX, pageY, pageHeight, scale float64) (float64, float64, error) {
	return geometry.ToPixel(pageX, pageY, pageHeight, scale)
}

// ToPage is the inverse of ToPixel.
func ToPage(pixelX, pixelY, pageHeight, scale float64) (float64, float64, error) {
	return geometry.ToPage(pixelX, pixelY, pageHeight, scale)
}

// Match returns the tokens whose origin lies within tolerance of (x, y) on both axes,
// in input order.
func Match(tokens []Token, x, y, tolerance float64) ([]Token, error) {
	return match.Match(tokens, x, y, tolerance)
}
