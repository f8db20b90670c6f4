package point

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
	"github.com/kailas-cloud/pagemark/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDomainMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type memDocs struct {
	docs map[string]domdoc.Document
}

func (m *memDocs) Get(_ context.Context, id string) (domdoc.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

// memRepo mirrors the SQL repository semantics: unique (document, name), newest-first lists.
type memRepo struct {
	points []dompoint.Point
	nextID int64
	docs   *memDocs
	err    error
}

func (m *memRepo) Create(_ context.Context, p *dompoint.Point, at time.Time) (dompoint.Point, error) {
	if m.err != nil {
		return dompoint.Point{}, m.err
	}
	for i := range m.points {
		if m.points[i].DocumentID() == p.DocumentID() && m.points[i].Name() == p.Name() {
			return dompoint.Point{}, domain.ErrPointNameConflict
		}
	}
	m.nextID++
	doc := m.docs.docs[p.DocumentID()]
	saved := dompoint.Reconstruct(m.nextID, p.DocumentID(), p.Name(), p.X(), p.Y(), p.Page(), at, p.Source(), doc.Filename())
	m.points = append(m.points, saved)
	return saved, nil
}

func (m *memRepo) sorted(docID string, newest bool) []dompoint.Point {
	out := make([]dompoint.Point, 0)
	for _, p := range m.points {
		if docID == "" || p.DocumentID() == docID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newest {
			return out[i].ID() > out[j].ID()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

func (m *memRepo) ListAll(_ context.Context) ([]dompoint.Point, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted("", true), nil
}

func (m *memRepo) ListByDocument(_ context.Context, id string) ([]dompoint.Point, error) {
	return m.sorted(id, true), nil
}

func (m *memRepo) ListByDocumentOldestFirst(_ context.Context, id string) ([]dompoint.Point, error) {
	return m.sorted(id, false), nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	for i := range m.points {
		if m.points[i].ID() == id {
			m.points = append(m.points[:i], m.points[i+1:]...)
			return nil
		}
	}
	return domain.ErrPointNotFound
}

var clockBase = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func newService(docs ...domdoc.Document) (*Service, *memRepo) {
	md := &memDocs{docs: map[string]domdoc.Document{}}
	for _, d := range docs {
		md.docs[d.ID()] = d
	}
	repo := &memRepo{docs: md}
	tick := clockBase
	svc := New(repo, md).WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	return svc, repo
}

func doc1() domdoc.Document {
	return domdoc.Reconstruct("doc1", "a.pdf", clockBase, 3, "thumbnail.png")
}

func strPtr(s string) *string { return &s }

// --- Tests ---

func TestSave_DefaultsSourceToFilename(t *testing.T) {
	svc, _ := newService(doc1())

	p, err := svc.Save(context.Background(), SaveInput{DocumentID: "doc1", Name: "P1", X: 100, Y: 200, Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() == 0 {
		t.Error("expected assigned ID")
	}
	if p.CreatedAt().IsZero() {
		t.Error("expected createdAt")
	}
	if p.Source() == nil || *p.Source() != "a.pdf" {
		t.Errorf("Source = %v, want a.pdf", p.Source())
	}
}

func TestSave_ExplicitSource(t *testing.T) {
	svc, _ := newService(doc1())

	p, err := svc.Save(context.Background(), SaveInput{
		DocumentID: "doc1", Name: "P1", X: 1, Y: 2, Page: 1, Source: strPtr("scanner"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.Source() != "scanner" {
		t.Errorf("Source = %q", *p.Source())
	}
}

func TestSave_UnknownDocument(t *testing.T) {
	svc, repo := newService()

	_, err := svc.Save(context.Background(), SaveInput{DocumentID: "ghost", Name: "P1", Page: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "resolve source document: document not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(repo.points) != 0 {
		t.Error("nothing must be stored")
	}
}

func TestSave_InvalidInput(t *testing.T) {
	svc, _ := newService(doc1())

	_, err := svc.Save(context.Background(), SaveInput{DocumentID: "doc1", Name: "", Page: 1})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

// doc1 / a.pdf / P1 scenario.
func TestSave_ConflictScenario(t *testing.T) {
	svc, _ := newService(doc1())
	ctx := context.Background()
	in := SaveInput{DocumentID: "doc1", Name: "P1", X: 100, Y: 200, Page: 1}

	first, err := svc.Save(ctx, in)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if *first.Source() != "a.pdf" {
		t.Errorf("Source = %q", *first.Source())
	}

	_, err = svc.Save(ctx, SaveInput{DocumentID: "doc1", Name: "P1", X: 5, Y: 5, Page: 2})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	points, err := svc.ListByDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(points) != 1 || points[0].Name() != "P1" || points[0].X() != 100 {
		t.Errorf("expected the original P1 only, got %v", points)
	}
}

func TestListByDocument_Unknown(t *testing.T) {
	svc, _ := newService(doc1())

	points, err := svc.ListByDocument(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty list, got %v", points)
	}
}

func TestListAll_Search(t *testing.T) {
	svc, _ := newService(doc1())
	ctx := context.Background()
	for _, name := range []string{"Invoice total", "Signature", "invoice date"} {
		if _, err := svc.Save(ctx, SaveInput{DocumentID: "doc1", Name: name, Page: 1}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	all, err := svc.ListAll(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name() != "invoice date" {
		t.Errorf("expected newest first, got %v", all)
	}

	hits, err := svc.ListAll(ctx, "INVOICE")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %d", len(hits))
	}

	bySource, _ := svc.ListAll(ctx, "a.pdf")
	if len(bySource) != 3 {
		t.Errorf("expected source match on all points, got %d", len(bySource))
	}
}

func TestListAll_StorageError(t *testing.T) {
	svc, repo := newService(doc1())
	repo.err = domain.NewStorageError("list points", errors.New("locked"))

	_, err := svc.ListAll(context.Background(), "")
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newService(doc1())
	ctx := context.Background()
	p, _ := svc.Save(ctx, SaveInput{DocumentID: "doc1", Name: "P1", Page: 1})

	if err := svc.Delete(ctx, p.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := svc.ListAll(ctx, "")
	if len(all) != 0 {
		t.Errorf("expected no points, got %v", all)
	}
	if err := svc.Delete(ctx, p.ID()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExportCSV_Empty(t *testing.T) {
	svc, _ := newService(doc1())

	out, err := svc.ExportCSV(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "id,name,x,y,page,created_at,source\n" {
		t.Errorf("unexpected export: %q", out)
	}
}

func TestExportCSV_UnknownDocument(t *testing.T) {
	svc, _ := newService()

	_, err := svc.ExportCSV(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	if err.Error() != "resolve exported document: document not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExportCSV_RowsOldestFirst(t *testing.T) {
	svc, _ := newService(doc1())
	ctx := context.Background()
	if _, err := svc.Save(ctx, SaveInput{DocumentID: "doc1", Name: "first", X: 1.5, Y: 2, Page: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Save(ctx, SaveInput{DocumentID: "doc1", Name: "second, with comma", X: 10, Y: 20.25, Page: 3,
		Source: strPtr("scan")}); err != nil {
		t.Fatal(err)
	}

	out, err := svc.ExportCSV(ctx, "doc1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"id,name,x,y,page,created_at,source",
		"1,first,1.5,2,1,2024-07-01T12:00:01.000Z,a.pdf",
		`2,"second, with comma",10,20.25,3,2024-07-01T12:00:02.000Z,scan`,
		"",
	}, "\n")
	if string(out) != want {
		t.Errorf("export mismatch:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestWriteCSV_NullSourcePlaceholder(t *testing.T) {
	var sb strings.Builder
	p := dompoint.Reconstruct(7, "doc1", "legacy", 0, 0, 1, clockBase, nil, "")
	if err := WriteCSV(&sb, []dompoint.Point{p}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(sb.String(), ",Desconhecido\n") {
		t.Errorf("expected placeholder source, got %q", sb.String())
	}
}
