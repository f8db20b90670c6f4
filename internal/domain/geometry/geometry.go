// Package geometry converts between PDF page space and bitmap pixel space.
//
// Page space has its origin at the bottom-left corner and is measured in PDF
// points. Pixel space has its origin at the top-left corner of a page bitmap
// rendered at a given scale (pixels per point).
package geometry

import (
	"math"

	"github.com/kailas-cloud/pagemark/internal/domain"
)

// PointsPerInch is the PDF user-space unit density.
const PointsPerInch = 72.0

// ScaleForDPI returns the rasterization scale that renders a page at dpi.
func ScaleForDPI(dpi float64) float64 { return dpi / PointsPerInch }

// ToPixel maps a page-space coordinate to bitmap pixels.
func ToPixel(pageX, pageY, pageHeight, scale float64) (float64, float64, error) {
	if err := checkScale(scale); err != nil {
		return 0, 0, err
	}
	return pageX * scale, (pageHeight - pageY) * scale, nil
}

// ToPage maps a bitmap pixel coordinate back to page space. Exact inverse of ToPixel.
func ToPage(pixelX, pixelY, pageHeight, scale float64) (float64, float64, error) {
	if err := checkScale(scale); err != nil {
		return 0, 0, err
	}
	return pixelX / scale, pageHeight - pixelY/scale, nil
}

func checkScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return domain.InvalidArgument("scale must be a positive finite number, got %v", scale)
	}
	return nil
}

// Rect is an integer pixel rectangle, Min inclusive, Max exclusive.
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// Dx returns the rectangle width.
func (r Rect) Dx() int { return r.MaxX - r.MinX }

// Dy returns the rectangle height.
func (r Rect) Dy() int { return r.MaxY - r.MinY }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.MinX >= r.MaxX || r.MinY >= r.MaxY }

// ZoomWindowStep is the window edge, in pixels, per zoom level.
const ZoomWindowStep = 100

// ZoomWindow returns the square window of ZoomWindowStep*level pixels centred on
// (px, py), clamped to a bitmap of width x height. level must be >= 1.
func ZoomWindow(px, py float64, level, width, height int) (Rect, error) {
	if level < 1 {
		return Rect{}, domain.InvalidArgument("zoom level must be >= 1, got %d", level)
	}
	if width <= 0 || height <= 0 {
		return Rect{}, domain.InvalidArgument("bitmap size must be positive, got %dx%d", width, height)
	}
	half := ZoomWindowStep * level / 2
	cx, cy := int(px), int(py)

	return Rect{
		MinX: max(0, cx-half),
		MinY: max(0, cy-half),
		MaxX: min(width, cx+half),
		MaxY: min(height, cy+half),
	}, nil
}

// FitWithin scales (w, h) down to fit a bound x bound box, keeping the aspect ratio.
// Sizes already inside the box are returned unchanged.
func FitWithin(w, h, bound int) (int, int) {
	if w <= bound && h <= bound || w <= 0 || h <= 0 {
		return w, h
	}
	if w >= h {
		return bound, max(1, h*bound/w)
	}
	return max(1, w*bound/h), bound
}
