package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
)

// A 612x792pt page rendered at scale 2.
const pageW, pageH = 1224, 1584

func newTestService(t *testing.T) (*Service, *mockBlobs) {
	t.Helper()
	doc, err := domdoc.New("doc-1", "a.pdf", 1, domdoc.ThumbnailName, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	blobs := &mockBlobs{data: map[string][]byte{
		"doc-1/page_1.png":    encode(t, image.NewRGBA(image.Rect(0, 0, pageW, pageH))),
		"doc-1/thumbnail.png": []byte("thumb"),
	}}
	return New(&mockDocs{doc: doc}, blobs, 2), blobs
}

func TestPageImage(t *testing.T) {
	svc, _ := newTestService(t)

	rc, err := svc.PageImage(context.Background(), "doc-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rc.Close()

	if _, err := svc.PageImage(context.Background(), "doc-1", 2); !errors.Is(err, domain.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	if _, err := svc.PageImage(context.Background(), "nope", 1); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	svc, _ := newTestService(t)

	rc, err := svc.Thumbnail(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "thumb" {
		t.Errorf("thumbnail = %q", b)
	}
}

func TestThumbnail_MissingAsset(t *testing.T) {
	svc, blobs := newTestService(t)
	delete(blobs.data, "doc-1/thumbnail.png")

	if _, err := svc.Thumbnail(context.Background(), "doc-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUnknownDocument(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, pageErr := svc.PageImage(ctx, "ghost", 1)
	_, thumbErr := svc.Thumbnail(ctx, "ghost")
	_, zoomErr := svc.Zoom(ctx, "ghost", 1, 10, 10, 1)

	for name, err := range map[string]error{"page": pageErr, "thumbnail": thumbErr, "zoom": zoomErr} {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Errorf("%s: expected ErrDocumentNotFound, got %v", name, err)
			continue
		}
		if err.Error() != "resolve document: document not found" {
			t.Errorf("%s: unexpected message %q", name, err.Error())
		}
	}
}

func TestZoom_CentredWindowWithMarker(t *testing.T) {
	svc, _ := newTestService(t)

	// Page point (300, 400) is pixel (600, 784).
	out, err := svc.Zoom(context.Background(), "doc-1", 1, 300, 400, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img := decode(t, out)

	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("zoom size = %dx%d, want 200x200", b.Dx(), b.Dy())
	}
	if c := color.RGBAModel.Convert(img.At(100, 100)).(color.RGBA); c != markerColor {
		t.Errorf("centre pixel = %v, want marker", c)
	}
	if c := color.RGBAModel.Convert(img.At(100+MarkerRadius+1, 100)).(color.RGBA); c == markerColor {
		t.Error("pixel outside the marker radius should not be painted")
	}
}

func TestZoom_ClampedAtCorner(t *testing.T) {
	svc, _ := newTestService(t)

	// Page origin is the bottom-left pixel corner.
	out, err := svc.Zoom(context.Background(), "doc-1", 1, 0, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img := decode(t, out)
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("clamped zoom size = %dx%d, want 50x50", b.Dx(), b.Dy())
	}
}

func TestZoom_InvalidArguments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		x, y  float64
		level int
	}{
		{"level zero", 10, 10, 0},
		{"level too high", 10, 10, MaxZoomLevel + 1},
		{"outside page", 5000, 5000, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Zoom(ctx, "doc-1", 1, tc.x, tc.y, tc.level)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestZoom_CorruptImage(t *testing.T) {
	svc, blobs := newTestService(t)
	blobs.data["doc-1/page_1.png"] = []byte("not a png")

	if _, err := svc.Zoom(context.Background(), "doc-1", 1, 10, 10, 1); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}

// --- Mocks ---

type mockDocs struct {
	doc domdoc.Document
}

func (m *mockDocs) Get(_ context.Context, id string) (domdoc.Document, error) {
	if id != m.doc.ID() {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return m.doc, nil
}

type mockBlobs struct {
	data map[string][]byte
}

func (m *mockBlobs) Open(key string) (io.ReadCloser, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return img
}
