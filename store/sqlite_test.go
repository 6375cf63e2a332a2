package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/corpus/corpustest"
	"github.com/rushteam/newsrec/store"
)

func openCatalog(t *testing.T) *store.SQLiteCatalog {
	t.Helper()
	c, err := store.OpenSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCatalog_Import(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)

	n, err := c.Import(ctx, corpustest.Documents())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	// 已存在的 ID 不覆盖
	n, err = c.Import(ctx, []corpus.Document{{ID: "N1", Title: "Replaced"}, {ID: "N7", Title: "Fresh"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	d, ok, err := c.Document(ctx, "N1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Election night live", d.Title)
	assert.Equal(t, "news", d.Category)

	_, ok, err = c.Document(ctx, "N404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteCatalog_Search(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)
	_, err := c.Import(ctx, corpustest.Documents())
	require.NoError(t, err)

	got, err := c.Search(ctx, "ELECTION", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "N1", got[0].ID, "corpus order")
	assert.Equal(t, "N5", got[1].ID)

	got, err = c.Search(ctx, "election", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = c.Search(ctx, "", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "N2", "N3"}, []string{got[0].ID, got[1].ID, got[2].ID})

	got, err = c.Search(ctx, "no such headline", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLiteCatalog_MatchesMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)
	_, err := c.Import(ctx, corpustest.Documents())
	require.NoError(t, err)
	mem := corpus.NewMemoryCatalog(corpustest.Documents())

	for _, kw := range []string{"", "the", "goal", "MARKET"} {
		want, err := mem.Search(ctx, kw, 10)
		require.NoError(t, err)
		got, err := c.Search(ctx, kw, 10)
		require.NoError(t, err)
		assert.Equal(t, want, got, "keyword %q", kw)
	}
}
