package lookup

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDomainMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockDocs struct{}

func (mockDocs) Get(_ context.Context, id string) (domdoc.Document, error) {
	if id != "doc1" {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return domdoc.Reconstruct("doc1", "a.pdf", time.Now(), 2, ""), nil
}

type mockExtractor struct {
	page  token.Page
	err   error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, _ string, page int) (token.Page, error) {
	m.calls++
	p := m.page
	p.Number = page
	return p, m.err
}

func pageWithTokens() token.Page {
	return token.Page{
		Width:  612,
		Height: 792,
		Tokens: []token.Token{
			{Box: token.Box{X0: 100, Y0: 200, X1: 140, Y1: 212}, Text: "Total"},
			{Box: token.Box{X0: 300, Y0: 200, X1: 340, Y1: 212}, Text: "Date"},
		},
	}
}

func f(v float64) *float64 { return &v }

// --- Tests ---

func TestLookup_PageSpace(t *testing.T) {
	ex := &mockExtractor{page: pageWithTokens()}
	svc := New(mockDocs{}, ex)

	res, err := svc.Lookup(context.Background(), Query{DocumentID: "doc1", Page: 1, X: 105, Y: 195})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Text != "Total" {
		t.Errorf("unexpected tokens: %+v", res.Tokens)
	}
	if res.Tolerance != 20 {
		t.Errorf("Tolerance = %v, want default 20", res.Tolerance)
	}
}

func TestLookup_PixelSpace(t *testing.T) {
	ex := &mockExtractor{page: pageWithTokens()}
	svc := New(mockDocs{}, ex).WithDefaults(2, 20)

	// (100, 200) in page space at scale 2 on a 792pt page.
	res, err := svc.Lookup(context.Background(), Query{
		DocumentID: "doc1", Page: 1, X: 200, Y: 1184, Space: SpacePixel,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.X != 100 || res.Y != 200 {
		t.Errorf("normalized coordinate = (%v, %v), want (100, 200)", res.X, res.Y)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Text != "Total" {
		t.Errorf("unexpected tokens: %+v", res.Tokens)
	}
}

func TestLookup_PixelSpaceExplicitScale(t *testing.T) {
	ex := &mockExtractor{page: pageWithTokens()}
	svc := New(mockDocs{}, ex).WithDefaults(2, 20)

	res, err := svc.Lookup(context.Background(), Query{
		DocumentID: "doc1", Page: 1, X: 300, Y: 592, Space: SpacePixel, Scale: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Text != "Date" {
		t.Errorf("unexpected tokens: %+v", res.Tokens)
	}
}

func TestLookup_InvalidScale(t *testing.T) {
	svc := New(mockDocs{}, &mockExtractor{page: pageWithTokens()})

	_, err := svc.Lookup(context.Background(), Query{
		DocumentID: "doc1", Page: 1, Space: SpacePixel, Scale: -1,
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestLookup_NoMatchIsEmpty(t *testing.T) {
	svc := New(mockDocs{}, &mockExtractor{page: pageWithTokens()})
	before := testutil.ToFloat64(metrics.LookupsTotal.WithLabelValues("empty"))

	res, err := svc.Lookup(context.Background(), Query{DocumentID: "doc1", Page: 1, X: 0, Y: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tokens) != 0 {
		t.Errorf("expected no tokens, got %+v", res.Tokens)
	}
	if got := testutil.ToFloat64(metrics.LookupsTotal.WithLabelValues("empty")); got != before+1 {
		t.Errorf("empty lookups = %v, want %v", got, before+1)
	}
}

func TestLookup_ZeroToleranceExactOrigin(t *testing.T) {
	svc := New(mockDocs{}, &mockExtractor{page: pageWithTokens()})

	res, err := svc.Lookup(context.Background(), Query{DocumentID: "doc1", Page: 1, X: 300, Y: 200, Tolerance: f(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Text != "Date" {
		t.Errorf("unexpected tokens: %+v", res.Tokens)
	}
}

func TestLookup_NegativeTolerance(t *testing.T) {
	svc := New(mockDocs{}, &mockExtractor{page: pageWithTokens()})

	_, err := svc.Lookup(context.Background(), Query{DocumentID: "doc1", Page: 1, Tolerance: f(-1)})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestLookup_UnknownDocument(t *testing.T) {
	ex := &mockExtractor{}
	svc := New(mockDocs{}, ex)

	_, err := svc.Lookup(context.Background(), Query{DocumentID: "ghost", Page: 1})
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	if err.Error() != "resolve document: document not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if ex.calls != 0 {
		t.Error("extractor must not be called for unknown documents")
	}
}

func TestLookup_PageOutOfRange(t *testing.T) {
	svc := New(mockDocs{}, &mockExtractor{})

	_, err := svc.Lookup(context.Background(), Query{DocumentID: "doc1", Page: 3})
	if !errors.Is(err, domain.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestLookup_ExtractorError(t *testing.T) {
	boom := errors.New("broken xref")
	svc := New(mockDocs{}, &mockExtractor{err: boom})

	_, err := svc.Lookup(context.Background(), Query{DocumentID: "doc1", Page: 1})
	if !errors.Is(err, boom) {
		t.Errorf("expected extractor error, got %v", err)
	}
}

func TestParseSpace(t *testing.T) {
	for in, want := range map[string]Space{"": SpacePage, "page": SpacePage, "pixel": SpacePixel} {
		got, err := ParseSpace(in)
		if err != nil || got != want {
			t.Errorf("ParseSpace(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSpace("inches"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
