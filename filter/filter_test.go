package filter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/filter"
	"github.com/rushteam/newsrec/store"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestBlacklistFilter(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	adapter := filter.NewStoreAdapter(ms)
	require.NoError(t, adapter.PutList(ctx, "blacklist", []string{"N3"}))

	node := &filter.FilterNode{Filters: []filter.Filter{
		filter.NewBlacklistFilter([]string{"N1"}, adapter, "blacklist"),
	}}
	out, err := node.Process(ctx, &core.RecommendContext{}, items("N1", "N2", "N3", "N4"))
	require.NoError(t, err)
	assert.Equal(t, []string{"N2", "N4"}, itemIDs(out))
}

func TestBlacklistFilter_MissingKey(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	f := filter.NewBlacklistFilter([]string{"N1"}, filter.NewStoreAdapter(ms), "absent")
	set, err := f.Excluded(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, set, 1)

	hit, err := f.ShouldFilter(context.Background(), nil, core.NewItem("N1"))
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestUserBlockFilter(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	adapter := filter.NewStoreAdapter(ms)
	require.NoError(t, adapter.PutList(ctx, filter.DefaultUserBlockPrefix+":u1", []string{"N2"}))

	node := &filter.FilterNode{Filters: []filter.Filter{filter.NewUserBlockFilter(adapter, "")}}

	out, err := node.Process(ctx, &core.RecommendContext{UserID: "u1"}, items("N1", "N2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"N1"}, itemIDs(out))

	out, err = node.Process(ctx, &core.RecommendContext{UserID: "u2"}, items("N1", "N2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "N2"}, itemIDs(out))
}

type brokenStore struct{}

func (brokenStore) GetBlacklist(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

func TestFilterNode_SkipsFailingFilter(t *testing.T) {
	node := &filter.FilterNode{Filters: []filter.Filter{
		&filter.BlacklistFilter{Store: brokenStore{}, Key: "blacklist"},
		&filter.BlacklistFilter{ItemIDs: []string{"N2"}},
	}}
	in := items("N1", "N2")
	out, err := node.Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1"}, itemIDs(out))
	assert.Equal(t, "filter.blacklist", in[1].Labels["filtered"].Source)
}

func TestFilterNode_Empty(t *testing.T) {
	node := &filter.FilterNode{}
	in := items("N1")
	out, err := node.Process(context.Background(), nil, in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
