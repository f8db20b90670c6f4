package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"time"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/domain"
	"github.com/kailas-cloud/pagemark/internal/domain/geometry"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

// PageFunc receives each rendered page (1-based) in order.
type PageFunc = func(page int, img image.Image) error

// Rasterizer renders PDF pages to bitmaps with MuPDF via go-fitz.
type Rasterizer struct {
	logger *zap.Logger
}

// NewRasterizer creates a rasterizer.
func NewRasterizer(logger *zap.Logger) *Rasterizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rasterizer{logger: logger}
}

// PageCount returns the number of pages of the PDF at path.
func (r *Rasterizer) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	doc, err := open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = doc.Close() }()
	n := doc.NumPage()
	if n == 0 {
		return 0, domain.InvalidArgument("PDF has no pages")
	}
	return n, nil
}

// Render rasterizes every page at scale pixels per point and hands each bitmap to fn.
// It returns the number of pages rendered.
func (r *Rasterizer) Render(ctx context.Context, path string, scale float64, fn PageFunc) (int, error) {
	if scale <= 0 {
		return 0, domain.InvalidArgument("render scale must be positive, got %v", scale)
	}
	doc, err := open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = doc.Close() }()

	n := doc.NumPage()
	if n == 0 {
		return 0, domain.InvalidArgument("PDF has no pages")
	}

	dpi := geometry.PointsPerInch * scale
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		start := time.Now()
		img, err := doc.ImageDPI(i, dpi)
		duration := time.Since(start)
		if err != nil {
			metrics.RenderDuration.WithLabelValues("error").Observe(duration.Seconds())
			r.logger.Warn("Page render failed",
				zap.String("path", path),
				zap.Int("page", i+1),
				zap.Error(err),
			)
			return i, domain.InvalidArgument("render page %d: %v", i+1, err)
		}
		metrics.RenderDuration.WithLabelValues("ok").Observe(duration.Seconds())

		if err := fn(i+1, img); err != nil {
			return i, err
		}
	}

	r.logger.Debug("Rendered document",
		zap.String("path", path),
		zap.Int("pages", n),
		zap.Float64("scale", scale),
	)
	return n, nil
}

func open(path string) (*fitz.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("pdf file %s: %w", path, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("stat pdf", err)
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.InvalidArgument("not a readable PDF: %v", err)
	}
	return doc, nil
}
