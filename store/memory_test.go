package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/store"
)

func TestMemoryStore_KV(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	assert.Equal(t, "memory", ms.Name())

	_, err := ms.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, ms.Set(ctx, "k", []byte("v")))
	got, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, ms.Delete(ctx, "k"))
	_, err = ms.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()

	require.NoError(t, ms.Set(ctx, "k", []byte("v"), 1))
	_, err := ms.Get(ctx, "k")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := ms.Get(ctx, "k")
		return core.IsStoreNotFound(err)
	}, 3*time.Second, 50*time.Millisecond)
}

func TestMemoryStore_History(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	ms.HistoryMaxLen = 3

	h, err := ms.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, ms.AppendHistory(ctx, "u1", "N1", "N2"))
	require.NoError(t, ms.AppendHistory(ctx, "u1", "N3", "N4"))
	require.NoError(t, ms.AppendHistory(ctx, "u1"))

	h, err = ms.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"N2", "N3", "N4"}, h)

	h, err = ms.History(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"N3", "N4"}, h)

	// 返回的是副本
	h[0] = "X"
	again, err := ms.History(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, "N3", again[0])
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	ms := store.NewMemoryStore()
	require.NoError(t, ms.Close())
	require.NoError(t, ms.Close())
}
