package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/corpus"
)

const newsTSV = "N10\tsports\tgolf\tA \"quoted\" title\tAbstract one\thttps://example.com/1\t[]\t[]\n" +
	"N11\tnews\tworld\tWorld news\t\t\t[]\t[]\n"

func TestParseNewsTSV(t *testing.T) {
	docs, err := corpus.ParseNewsTSV(strings.NewReader(newsTSV))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "N10", docs[0].ID)
	assert.Equal(t, `A "quoted" title`, docs[0].Title)
	assert.Equal(t, "https://example.com/1", docs[0].URL)
	assert.Equal(t, "world", docs[1].Subcategory)

	_, err = corpus.ParseNewsTSV(strings.NewReader("N1\tnews\n"))
	require.Error(t, err)
}

func TestConvertTSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "news.tsv")
	require.NoError(t, os.WriteFile(src, []byte(newsTSV), 0o644))

	out, err := corpus.ConvertTSV(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "news.csv"), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	docs, err := corpus.ParseNewsCSV(f)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, `A "quoted" title`, docs[0].Title)
	assert.Equal(t, "N11", docs[1].ID)
}

func TestConvertTSV_Behaviors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "behaviors.tsv")
	require.NoError(t, os.WriteFile(src, []byte("1\tU1\t11/11/2019 9:05:58 AM\tN1 N2\tN3-1 N4-0\n"), 0o644))

	out, err := corpus.ConvertTSV(src)
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(corpus.BehaviorColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,U1,"))
}

func TestMemoryCatalog(t *testing.T) {
	cat := corpus.NewMemoryCatalog([]corpus.Document{
		{ID: "a", Title: "Market Update"},
		{ID: "b", Title: "Football tonight"},
		{ID: "a", Title: "duplicate"},
		{ID: "c", Title: "market close"},
	})
	assert.Equal(t, 3, cat.Len())

	doc, ok, err := cat.Document(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Market Update", doc.Title, "first occurrence wins")

	got, err := cat.Search(context.Background(), "MARKET", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	got, err = cat.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestParseEvaluationCSV(t *testing.T) {
	in := "auc,threshold,accuracy,f1_score,precision,recall,rows\n0.7,0.12,0.8,0.3,0.25,0.4,500\n"
	eval, err := corpus.ParseEvaluationCSV(strings.NewReader(in))
	require.NoError(t, err)
	row, ok := eval.Primary()
	require.True(t, ok)
	assert.InDelta(t, 0.12, row.Threshold, 1e-12)
	assert.InDelta(t, 0.7, row.AUC, 1e-12)
	assert.Equal(t, int64(500), row.Rows)
	assert.Nil(t, row.PRAUC)

	_, err = corpus.ParseEvaluationCSV(strings.NewReader("threshold\nabc\n"))
	require.Error(t, err)

	empty, err := corpus.ParseEvaluationCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.InDelta(t, 0.04, empty.Threshold(0.04), 1e-12)
}

func TestReadVocabulary(t *testing.T) {
	v, err := corpus.ReadVocabulary(strings.NewReader("alpha\r\nbeta\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	term, ok := v.Term(0)
	assert.True(t, ok)
	assert.Equal(t, "alpha", term)
	_, ok = v.Term(2)
	assert.False(t, ok)

	var nilVocab *corpus.Vocabulary
	assert.False(t, nilVocab.Available())
}
