package corpus_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/corpus/corpustest"
)

func TestNewMatrix_Validation(t *testing.T) {
	tests := []struct {
		name string
		csr  corpus.CSR
	}{
		{"indptr length", corpus.CSR{Shape: [2]int{2, 3}, Indptr: []int{0, 1}, Indices: []int{0}, Data: []float64{1}}},
		{"indptr start", corpus.CSR{Shape: [2]int{1, 3}, Indptr: []int{1, 1}}},
		{"indptr decreasing", corpus.CSR{Shape: [2]int{2, 3}, Indptr: []int{0, 2, 1}, Indices: []int{0}, Data: []float64{1}}},
		{"nnz mismatch", corpus.CSR{Shape: [2]int{1, 3}, Indptr: []int{0, 2}, Indices: []int{0, 1}, Data: []float64{1}}},
		{"column out of range", corpus.CSR{Shape: [2]int{1, 3}, Indptr: []int{0, 1}, Indices: []int{3}, Data: []float64{1}}},
		{"negative shape", corpus.CSR{Shape: [2]int{-1, 3}, Indptr: []int{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := corpus.NewMatrix(tt.csr)
			require.ErrorIs(t, err, core.ErrMalformedMatrix)
		})
	}
}

func TestMatrix_Row(t *testing.T) {
	mat, err := corpus.NewMatrix(corpustest.CSR())
	require.NoError(t, err)

	assert.Equal(t, 6, mat.Rows())
	assert.Equal(t, 6, mat.Cols())
	assert.Equal(t, 10, mat.Nnz())

	row, err := mat.Row(4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, row.Indices)
	assert.Equal(t, []float64{2, 1}, row.Values)
	assert.Equal(t, []float64{0, 2, 1, 0, 0, 0}, row.ToDense())
	assert.InDelta(t, math.Sqrt(5), row.L2Norm(), 1e-12)

	norm, err := mat.RowNorm(4)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5), norm, 1e-12)

	empty, err := mat.Row(5)
	require.NoError(t, err)
	assert.Zero(t, empty.Nnz())

	_, err = mat.Row(6)
	require.ErrorIs(t, err, core.ErrRowOutOfRange)
	_, err = mat.Row(-1)
	require.ErrorIs(t, err, core.ErrRowOutOfRange)
}

func TestMatrix_CosineBatch(t *testing.T) {
	mat, err := corpus.NewMatrix(corpustest.CSR())
	require.NoError(t, err)

	t.Run("matches per-row cosine", func(t *testing.T) {
		query := []float64{1, 1, 0, 0, 0, 0} // 与 N1 相同
		got, err := mat.CosineBatch(query, []int{0, 1, 3, 4, 5})
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.InDelta(t, 1.0, got[0], 1e-12)
		assert.InDelta(t, 0.0, got[1], 1e-12)
		assert.InDelta(t, 0.5, got[2], 1e-12)
		assert.InDelta(t, 2/(math.Sqrt(2)*math.Sqrt(5)), got[3], 1e-12)
		assert.Equal(t, 0.0, got[4], "zero-norm row scores 0")
		for i, r := range []int{0, 1, 3, 4, 5} {
			row, err := mat.Row(r)
			require.NoError(t, err)
			want := 0.0
			if n := row.L2Norm(); n > 0 {
				want = row.Dot(query) / (corpus.Norm(query) * n)
			}
			assert.InDelta(t, want, got[i], 1e-12)
		}
	})

	t.Run("zero query", func(t *testing.T) {
		got, err := mat.CosineBatch(make([]float64, 6), []int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0}, got)
	})

	t.Run("bounded", func(t *testing.T) {
		got, err := mat.CosineBatch([]float64{0.3, 2, 0.1, 5, 1, 0.2}, []int{0, 1, 2, 3, 4})
		require.NoError(t, err)
		for _, s := range got {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0+1e-12)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := mat.CosineBatch([]float64{1, 2}, []int{0})
		require.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("row out of range", func(t *testing.T) {
		_, err := mat.CosineBatch(make([]float64, 6), []int{0, 9})
		require.ErrorIs(t, err, core.ErrRowOutOfRange)
	})
}

func TestMatrix_AccumulateRow(t *testing.T) {
	mat, err := corpus.NewMatrix(corpustest.CSR())
	require.NoError(t, err)

	dst := make([]float64, 6)
	require.NoError(t, mat.AccumulateRow(dst, 0, 1))
	require.NoError(t, mat.AccumulateRow(dst, 4, 0.5))
	assert.Equal(t, []float64{1, 2, 0.5, 0, 0, 0}, dst)

	require.ErrorIs(t, mat.AccumulateRow(make([]float64, 2), 0, 1), core.ErrDimensionMismatch)
	require.ErrorIs(t, mat.AccumulateRow(dst, 7, 1), core.ErrRowOutOfRange)
}
