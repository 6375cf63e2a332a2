package profile_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/corpus/corpustest"
	"github.com/rushteam/newsrec/profile"
)

func TestWeights(t *testing.T) {
	assert.Nil(t, profile.Weights(0, true))
	assert.Equal(t, []float64{1}, profile.Weights(1, true))
	assert.Equal(t, []float64{1, 1, 1}, profile.Weights(3, false))
	assert.Equal(t, []float64{1, 1.5, 2}, profile.Weights(3, true))

	w := profile.Weights(7, true)
	assert.Equal(t, 1.0, w[0])
	assert.Equal(t, 2.0, w[6])
	for i := 1; i < len(w); i++ {
		assert.Greater(t, w[i], w[i-1])
	}
}

func TestBuild(t *testing.T) {
	b := corpustest.Bundle(t)

	t.Run("weighted", func(t *testing.T) {
		v, err := profile.Build([]string{"N1", "N2"}, b.Index, b.Matrix, true)
		require.NoError(t, err)
		want := []float64{1.0 / 3, 1.0 / 3, 2.0 / 3, 2.0 / 3, 0, 0}
		require.Len(t, v, len(want))
		for i := range want {
			assert.InDelta(t, want[i], v[i], 1e-12, "column %d", i)
		}
	})

	t.Run("unweighted", func(t *testing.T) {
		v, err := profile.Build([]string{"N1", "N2"}, b.Index, b.Matrix, false)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5, 0, 0}, []float64(v), 1e-12)
	})

	t.Run("unknown ids dropped before weighting", func(t *testing.T) {
		withUnknown, err := profile.Build([]string{"N1", "X9", "N2"}, b.Index, b.Matrix, true)
		require.NoError(t, err)
		clean, err := profile.Build([]string{"N1", "N2"}, b.Index, b.Matrix, true)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64(clean), []float64(withUnknown), 1e-12)

		// 先加权后丢弃会得到 N1=1.5、N2=2 的权重
		weightThenDrop := 1.5 / 3.5
		assert.InDelta(t, 1.0/3, withUnknown[0], 1e-12)
		assert.NotEqual(t, weightThenDrop, withUnknown[0])
	})

	t.Run("duplicates count twice", func(t *testing.T) {
		v, err := profile.Build([]string{"N1", "N1", "N2"}, b.Index, b.Matrix, false)
		require.NoError(t, err)
		assert.InDelta(t, 2.0/3, v[0], 1e-12)
		assert.InDelta(t, 1.0/3, v[2], 1e-12)
	})

	t.Run("absent", func(t *testing.T) {
		v, err := profile.Build([]string{"X1", "X2"}, b.Index, b.Matrix, true)
		require.NoError(t, err)
		assert.True(t, v.Absent())

		v, err = profile.Build(nil, b.Index, b.Matrix, true)
		require.NoError(t, err)
		assert.True(t, v.Absent())
	})

	t.Run("empty row keeps profile present", func(t *testing.T) {
		v, err := profile.Build([]string{"N6"}, b.Index, b.Matrix, true)
		require.NoError(t, err)
		assert.False(t, v.Absent())
		assert.Zero(t, math.Sqrt(v[0]*v[0]+v[1]*v[1]))
	})
}

func TestMostSimilarHistory(t *testing.T) {
	b := corpustest.Bundle(t)
	history := []string{"N1", "X9", "N2"}
	v, err := profile.Build(history, b.Index, b.Matrix, true)
	require.NoError(t, err)

	got, err := profile.MostSimilarHistory(v, history, b.Index, b.Matrix, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "N2", got[0].ID)
	assert.InDelta(t, 4/math.Sqrt(20), got[0].Score, 1e-12)
	assert.Equal(t, "N1", got[1].ID)
	assert.InDelta(t, 2/math.Sqrt(20), got[1].Score, 1e-12)

	top1, err := profile.MostSimilarHistory(v, history, b.Index, b.Matrix, 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, "N2", top1[0].ID)

	none, err := profile.MostSimilarHistory(nil, history, b.Index, b.Matrix, 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	zero, err := profile.MostSimilarHistory(v, history, b.Index, b.Matrix, 0)
	require.NoError(t, err)
	assert.Empty(t, zero)
}
