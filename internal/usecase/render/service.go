// Package render serves the rendered page assets of registered documents.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/domain/geometry"
)

const (
	// MaxZoomLevel bounds the zoom window to 1000px.
	MaxZoomLevel = 10
	// MarkerRadius is the radius, in pixels, of the dot drawn at the zoomed point.
	MarkerRadius = 15
)

var markerColor = color.RGBA{R: 255, A: 255}

// Service reads page images, thumbnails and zoom views.
type Service struct {
	docs  DocumentReader
	blobs BlobReader
	scale float64
}

// New creates a render service. scale must match the scale pages were rendered with.
func New(docs DocumentReader, blobs BlobReader, scale float64) *Service {
	if scale <= 0 {
		scale = 1
	}
	return &Service{docs: docs, blobs: blobs, scale: scale}
}

// PageImage opens the rendered PNG of a page. The caller closes the reader.
func (s *Service) PageImage(ctx context.Context, documentID string, page int) (io.ReadCloser, error) {
	if err := s.checkPage(ctx, documentID, page); err != nil {
		return nil, err
	}
	rc, err := s.blobs.Open(domdoc.AssetKey(documentID, domdoc.PageImageName(page)))
	if err != nil {
		return nil, fmt.Errorf("open page image: %w", err)
	}
	return rc, nil
}

// Thumbnail opens the document thumbnail PNG. The caller closes the reader.
func (s *Service) Thumbnail(ctx context.Context, documentID string) (io.ReadCloser, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("resolve document: %w", err)
	}
	ref := doc.ThumbnailRef()
	if ref == "" {
		return nil, fmt.Errorf("thumbnail of %s: %w", documentID, domain.ErrNotFound)
	}
	rc, err := s.blobs.Open(domdoc.AssetKey(documentID, ref))
	if err != nil {
		return nil, fmt.Errorf("open thumbnail: %w", err)
	}
	return rc, nil
}

// Zoom crops a window of 100*level pixels around the page-space point (x, y), marks the
// point and returns the crop as PNG.
func (s *Service) Zoom(ctx context.Context, documentID string, page int, x, y float64, level int) ([]byte, error) {
	if level > MaxZoomLevel {
		return nil, domain.InvalidArgument("zoom level must be <= %d, got %d", MaxZoomLevel, level)
	}
	rc, err := s.PageImage(ctx, documentID, page)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	src, err := png.Decode(rc)
	if err != nil {
		return nil, domain.NewStorageError("decode page image", err)
	}
	b := src.Bounds()

	pageHeight := float64(b.Dy()) / s.scale
	px, py, err := geometry.ToPixel(x, y, pageHeight, s.scale)
	if err != nil {
		return nil, err
	}
	win, err := geometry.ZoomWindow(px, py, level, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if win.Empty() {
		return nil, domain.InvalidArgument("point (%v, %v) is outside page %d", x, y, page)
	}

	dst := image.NewRGBA(image.Rect(0, 0, win.Dx(), win.Dy()))
	draw.Draw(dst, dst.Bounds(), src, image.Pt(b.Min.X+win.MinX, b.Min.Y+win.MinY), draw.Src)
	drawDot(dst, int(px)-win.MinX, int(py)-win.MinY, MarkerRadius, markerColor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode zoom: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) checkPage(ctx context.Context, documentID string, page int) error {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("resolve document: %w", err)
	}
	return doc.CheckPage(page)
}

// drawDot fills a disk of radius r centred on (cx, cy), clipped to img.
func drawDot(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	area := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1).Intersect(img.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
