// Package pdf adapts PDF libraries to the extraction and rasterization ports.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	lpdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/domain"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

// Locator resolves a registered document ID to its PDF path on disk.
type Locator func(documentID string) string

// Extractor reads positioned words from PDF pages via ledongthuc/pdf.
type Extractor struct {
	locate Locator
	logger *zap.Logger
}

// NewExtractor creates an extractor. locate may be nil when only ExtractFile is used.
func NewExtractor(locate Locator, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{locate: locate, logger: logger}
}

// Extract returns the words of one page of a registered document.
func (e *Extractor) Extract(ctx context.Context, documentID string, page int) (token.Page, error) {
	if e.locate == nil {
		return token.Page{}, fmt.Errorf("extractor has no document locator")
	}
	return e.ExtractFile(ctx, e.locate(documentID), page)
}

// ExtractFile returns the words of one page (1-based) of the PDF at path.
func (e *Extractor) ExtractFile(ctx context.Context, path string, page int) (token.Page, error) {
	if err := ctx.Err(); err != nil {
		return token.Page{}, err
	}

	start := time.Now()
	p, err := extractFile(path, page)
	duration := time.Since(start)

	if err != nil {
		metrics.ExtractionDuration.WithLabelValues("error").Observe(duration.Seconds())
		e.logger.Warn("Text extraction failed",
			zap.String("path", path),
			zap.Int("page", page),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return token.Page{}, err
	}

	metrics.ExtractionDuration.WithLabelValues("ok").Observe(duration.Seconds())
	e.logger.Debug("Text extraction completed",
		zap.String("path", path),
		zap.Int("page", page),
		zap.Int("tokens", len(p.Tokens)),
		zap.Duration("duration", duration),
	)
	return p, nil
}

func extractFile(path string, pageNum int) (out token.Page, err error) {
	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = domain.InvalidArgument("malformed PDF content on page %d: %v", pageNum, r)
		}
	}()

	f, r, err := lpdf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return token.Page{}, fmt.Errorf("pdf file %s: %w", path, domain.ErrNotFound)
		}
		return token.Page{}, domain.InvalidArgument("not a readable PDF: %v", err)
	}
	defer func(f *os.File) { _ = f.Close() }(f)

	if pageNum < 1 || pageNum > r.NumPage() {
		return token.Page{}, fmt.Errorf("page %d of %d: %w", pageNum, r.NumPage(), domain.ErrPageNotFound)
	}
	p := r.Page(pageNum)
	if p.V.IsNull() {
		return token.Page{}, fmt.Errorf("page %d: %w", pageNum, domain.ErrPageNotFound)
	}

	llx, lly, urx, ury := mediaBox(p.V)
	words := groupWords(p.Content().Text)
	for i := range words {
		words[i].X0 -= llx
		words[i].X1 -= llx
		words[i].Y0 -= lly
		words[i].Y1 -= lly
	}

	return token.Page{
		Number: pageNum,
		Width:  urx - llx,
		Height: ury - lly,
		Tokens: words,
	}, nil
}

// US Letter, used when no MediaBox is found in the page tree.
const defaultWidth, defaultHeight = 612.0, 792.0

// mediaBox reads the page MediaBox, following inheritance through Parent.
func mediaBox(v lpdf.Value) (llx, lly, urx, ury float64) {
	for depth := 0; depth < 32 && v.Kind() == lpdf.Dict; depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == lpdf.Array && box.Len() == 4 {
			return box.Index(0).Float64(), box.Index(1).Float64(), box.Index(2).Float64(), box.Index(3).Float64()
		}
		v = v.Key("Parent")
	}
	return 0, 0, defaultWidth, defaultHeight
}
