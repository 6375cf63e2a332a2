package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/corpus/corpustest"
)

func TestLoadDir(t *testing.T) {
	tests := []struct {
		name string
		opts corpustest.DirOptions
	}{
		{"plain", corpustest.DirOptions{}},
		{"zstd", corpustest.DirOptions{Compress: true}},
		{"mind tsv", corpustest.DirOptions{NewsTSV: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := corpustest.WriteDir(t, t.TempDir(), tt.opts)
			b, err := corpus.LoadDir(context.Background(), dir)
			require.NoError(t, err)

			assert.Equal(t, 6, b.Index.Len())
			assert.Equal(t, 6, b.Matrix.Cols())
			assert.Equal(t, 10, b.Matrix.Nnz())
			assert.Equal(t, len(corpustest.Terms), b.Vocab.Len())
			assert.Equal(t, []string{"N1", "N2", "N3", "N4", "N5", "N6"}, b.Universe())
			assert.InDelta(t, corpustest.Threshold, b.Evaluation.Threshold(0.04), 1e-12)

			doc, ok, err := b.Catalog.Document(context.Background(), "N3")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "finance", doc.Category)
		})
	}
}

func TestLoadDir_OptionalVocab(t *testing.T) {
	dir := corpustest.WriteDir(t, t.TempDir(), corpustest.DirOptions{OmitVocab: true})
	b, err := corpus.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, b.Vocab.Available())
}

func TestLoadDir_Missing(t *testing.T) {
	dir := corpustest.WriteDir(t, t.TempDir(), corpustest.DirOptions{
		Omit: []string{corpus.IndexFile, corpus.MetricsFile},
	})
	_, err := corpus.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, core.ErrArtifactMissing)
	assert.Contains(t, err.Error(), corpus.IndexFile)
	assert.Contains(t, err.Error(), corpus.MetricsFile)
	assert.True(t, core.IsStructural(err))
}

func TestLoadDir_VocabularyMismatch(t *testing.T) {
	dir := corpustest.WriteDir(t, t.TempDir(), corpustest.DirOptions{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, corpus.VocabFile), []byte("one\ntwo\n"), 0o644))

	_, err := corpus.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, core.ErrVocabularyMismatch)
}

func TestLoadDir_MalformedMatrix(t *testing.T) {
	dir := corpustest.WriteDir(t, t.TempDir(), corpustest.DirOptions{})
	bad := `{"shape":[2,2],"indptr":[0,1],"indices":[0],"data":[1]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, corpus.MatrixFile), []byte(bad), 0o644))

	_, err := corpus.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, core.ErrMalformedMatrix)
}

func TestLoadDir_IndexBeyondMatrix(t *testing.T) {
	dir := corpustest.WriteDir(t, t.TempDir(), corpustest.DirOptions{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, corpus.IndexFile), []byte(`{"N1":0,"N9":6}`), 0o644))

	_, err := corpus.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, core.ErrRowOutOfRange)
}

func TestShared(t *testing.T) {
	calls := 0
	s := corpus.NewShared(func() (*corpus.Bundle, error) {
		calls++
		return corpustest.Bundle(t), nil
	})
	a, err := s.Get()
	require.NoError(t, err)
	b, err := s.Get()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}

func TestNewBundle_UniverseWithoutCatalog(t *testing.T) {
	mat, err := corpus.NewMatrix(corpustest.CSR())
	require.NoError(t, err)
	idx, err := corpus.NewIndex(map[string]int{"N5": 4, "N2": 1}, mat.Rows())
	require.NoError(t, err)

	b, err := corpus.NewBundle(idx, mat, nil, nil, corpus.Evaluation{})
	require.NoError(t, err)
	assert.Equal(t, []string{"N2", "N5"}, b.Universe())
	assert.InDelta(t, 0.04, b.Evaluation.Threshold(0.04), 1e-12)

	v, ok, err := b.ItemVector("N5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v.Nnz())
	_, ok, err = b.ItemVector("N1")
	require.NoError(t, err)
	assert.False(t, ok)
}
