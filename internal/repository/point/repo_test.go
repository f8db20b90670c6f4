package point

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/pagemark/internal/db/sqlite"
	"github.com/kailas-cloud/pagemark/internal/domain"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
	docrepo "github.com/kailas-cloud/pagemark/internal/repository/document"
)

var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T, docs ...string) *Repo {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.NewStore(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })

	documents := docrepo.New(s)
	for _, id := range docs {
		d, err := domdoc.New(id, id+".pdf", 1, "", base)
		require.NoError(t, err)
		require.NoError(t, documents.Create(ctx, &d))
	}
	return New(s)
}

func newPoint(t *testing.T, docID, name string, source *string) dompoint.Point {
	t.Helper()
	p, err := dompoint.New(docID, name, 100, 200, 1, source)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func TestCreate_AssignsIDAndCreatedAt(t *testing.T) {
	r := setupRepo(t, "doc1")
	ctx := context.Background()
	p := newPoint(t, "doc1", "P1", strPtr("a.pdf"))

	saved, err := r.Create(ctx, &p, base)
	require.NoError(t, err)
	assert.Positive(t, saved.ID())
	assert.True(t, base.Equal(saved.CreatedAt()))
	assert.Equal(t, "a.pdf", saved.SourceOrUnknown())

	p2 := newPoint(t, "doc1", "P2", nil)
	saved2, err := r.Create(ctx, &p2, base)
	require.NoError(t, err)
	assert.Greater(t, saved2.ID(), saved.ID())
}

func TestCreate_DuplicateNameConflict(t *testing.T) {
	r := setupRepo(t, "doc1")
	ctx := context.Background()
	p := newPoint(t, "doc1", "P1", nil)

	_, err := r.Create(ctx, &p, base)
	require.NoError(t, err)

	dup, _ := dompoint.New("doc1", "P1", 1, 1, 2, nil)
	_, err = r.Create(ctx, &dup, base.Add(time.Second))
	assert.ErrorIs(t, err, domain.ErrPointNameConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)

	points, err := r.ListByDocument(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 100.0, points[0].X())
}

func TestCreate_SameNameOtherDocument(t *testing.T) {
	r := setupRepo(t, "doc1", "doc2")
	ctx := context.Background()

	p1 := newPoint(t, "doc1", "P1", nil)
	_, err := r.Create(ctx, &p1, base)
	require.NoError(t, err)

	p2 := newPoint(t, "doc2", "P1", nil)
	_, err = r.Create(ctx, &p2, base)
	require.NoError(t, err)
}

func TestCreate_UnknownDocument(t *testing.T) {
	r := setupRepo(t)
	p := newPoint(t, "ghost", "P1", nil)

	_, err := r.Create(context.Background(), &p, base)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestListOrdering(t *testing.T) {
	r := setupRepo(t, "doc1", "doc2")
	ctx := context.Background()

	create := func(doc, name string, at time.Time) {
		p := newPoint(t, doc, name, nil)
		_, err := r.Create(ctx, &p, at)
		require.NoError(t, err)
	}
	create("doc1", "A", base)
	create("doc2", "B", base.Add(time.Minute))
	create("doc1", "C", base.Add(2*time.Minute))
	create("doc1", "D", base.Add(2*time.Minute))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "B", "A"}, names(all))
	assert.Equal(t, "doc2.pdf", all[2].Filename())

	byDoc, err := r.ListByDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "A"}, names(byDoc))

	oldest, err := r.ListByDocumentOldestFirst(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D"}, names(oldest))
}

func TestListByDocument_Unknown(t *testing.T) {
	r := setupRepo(t)

	points, err := r.ListByDocument(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestDelete(t *testing.T) {
	r := setupRepo(t, "doc1")
	ctx := context.Background()
	p := newPoint(t, "doc1", "P1", nil)
	saved, err := r.Create(ctx, &p, base)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, saved.ID()))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = r.Delete(ctx, saved.ID())
	assert.ErrorIs(t, err, domain.ErrPointNotFound)
}

func TestNullSourceRoundTrip(t *testing.T) {
	r := setupRepo(t, "doc1")
	ctx := context.Background()
	p := newPoint(t, "doc1", "P1", nil)
	_, err := r.Create(ctx, &p, base)
	require.NoError(t, err)

	points, err := r.ListByDocument(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Nil(t, points[0].Source())
	assert.Equal(t, dompoint.UnknownSource, points[0].SourceOrUnknown())
}

func names(points []dompoint.Point) []string {
	out := make([]string, len(points))
	for i := range points {
		out[i] = points[i].Name()
	}
	return out
}
