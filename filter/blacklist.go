package filter

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// BlacklistFilter 是编辑黑名单过滤器：过滤掉下线/不宜推荐的新闻。
// 黑名单来自内存列表与 Store 中 Key 对应的 JSON 数组之并集。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单新闻 ID 列表
	ItemIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单新闻 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

var _ SetFilter = (*BlacklistFilter)(nil)

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) Excluded(ctx context.Context, _ *core.RecommendContext) (map[string]struct{}, error) {
	if f.Store == nil || f.Key == "" {
		return toSet(f.ItemIDs), nil
	}
	stored, err := f.Store.GetBlacklist(ctx, f.Key)
	if err != nil && !core.IsStoreNotFound(err) {
		return nil, err
	}
	return toSet(f.ItemIDs, stored), nil
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	set, err := f.Excluded(ctx, rctx)
	if err != nil {
		return false, err
	}
	_, hit := set[item.ID]
	return hit, nil
}
