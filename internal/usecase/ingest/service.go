// Package ingest turns an uploaded PDF into a registered document with rendered page assets.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/domain/geometry"
)

const (
	// DefaultScale matches the 2x matrix pages were always rendered with.
	DefaultScale = 2.0
	// DefaultThumbnailMaxPx bounds the thumbnail edge.
	DefaultThumbnailMaxPx = 500

	stagingPrefix = "staging"
)

// PageInfo describes one rendered page.
type PageInfo struct {
	Page     int
	Width    int
	Height   int
	ImageRef string
}

// Result is the registered document plus its rendered pages.
type Result struct {
	Document domdoc.Document
	Pages    []PageInfo
}

// Service runs the ingest pipeline.
type Service struct {
	raster   Rasterizer
	blobs    BlobStore
	registry Registry
	logger   *zap.Logger

	scale          float64
	thumbnailMaxPx int
	newStagingID   func() string
}

// New creates an ingest service.
func New(raster Rasterizer, blobs BlobStore, registry Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		raster:         raster,
		blobs:          blobs,
		registry:       registry,
		logger:         logger,
		scale:          DefaultScale,
		thumbnailMaxPx: DefaultThumbnailMaxPx,
		newStagingID:   uuid.NewString,
	}
}

// WithRender sets the render scale and thumbnail bound. Non-positive values keep the defaults.
func (s *Service) WithRender(scale float64, thumbnailMaxPx int) *Service {
	if scale > 0 {
		s.scale = scale
	}
	if thumbnailMaxPx > 0 {
		s.thumbnailMaxPx = thumbnailMaxPx
	}
	return s
}

// Scale returns the render scale in pixels per point.
func (s *Service) Scale() float64 { return s.scale }

// Ingest stages the PDF, renders its pages and thumbnail, registers the document
// and promotes the staged assets under the new document ID.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (Result, error) {
	filename = path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if filename == "" || filename == "." || filename == "/" {
		return Result{}, domain.InvalidArgument("filename is required")
	}
	if !strings.EqualFold(path.Ext(filename), ".pdf") {
		return Result{}, domain.InvalidArgument("only PDF files are accepted, got %q", filename)
	}

	staging := path.Join(stagingPrefix, s.newStagingID())
	promoted := false
	defer func() {
		if promoted {
			return
		}
		if err := s.blobs.RemoveAll(staging); err != nil {
			s.logger.Warn("Failed to clean staging dir", zap.String("staging", staging), zap.Error(err))
		}
	}()

	if err := s.blobs.Put(domdoc.AssetKey(staging, domdoc.SourceName), r); err != nil {
		return Result{}, fmt.Errorf("stage upload: %w", err)
	}
	srcPath, err := s.blobs.Path(domdoc.AssetKey(staging, domdoc.SourceName))
	if err != nil {
		return Result{}, err
	}

	var pages []PageInfo
	n, err := s.raster.Render(ctx, srcPath, s.scale, func(page int, img image.Image) error {
		name := domdoc.PageImageName(page)
		if err := s.putPNG(domdoc.AssetKey(staging, name), img); err != nil {
			return err
		}
		if page == 1 {
			if err := s.putPNG(domdoc.AssetKey(staging, domdoc.ThumbnailName), s.thumbnail(img)); err != nil {
				return err
			}
		}
		b := img.Bounds()
		pages = append(pages, PageInfo{Page: page, Width: b.Dx(), Height: b.Dy(), ImageRef: name})
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("render pages: %w", err)
	}

	doc, err := s.registry.Register(ctx, filename, n, domdoc.ThumbnailName)
	if err != nil {
		return Result{}, fmt.Errorf("register document: %w", err)
	}

	if err := s.blobs.Rename(staging, doc.ID()); err != nil {
		// The row exists but its assets do not; lookups on it will report the missing PDF.
		s.logger.Error("Failed to promote staged assets",
			zap.String("document_id", doc.ID()),
			zap.String("staging", staging),
			zap.Error(err),
		)
		return Result{}, fmt.Errorf("promote assets: %w", err)
	}
	promoted = true

	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID()),
		zap.String("filename", filename),
		zap.Int("pages", n),
	)
	return Result{Document: doc, Pages: pages}, nil
}

func (s *Service) thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := geometry.FitWithin(b.Dx(), b.Dy(), s.thumbnailMaxPx)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (s *Service) putPNG(key string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.blobs.Put(key, &buf)
}
