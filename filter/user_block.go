package filter

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// UserBlockFilter 是用户屏蔽过滤器，过滤掉用户主动屏蔽的新闻。
type UserBlockFilter struct {
	// Store 用于从存储中读取用户屏蔽列表
	Store UserBlockStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{UserID}
	KeyPrefix string
}

// UserBlockStore 是用户屏蔽存储接口。
type UserBlockStore interface {
	// GetUserBlocks 获取用户屏蔽的新闻 ID 列表
	GetUserBlocks(ctx context.Context, userID string, keyPrefix string) ([]string, error)
}

var _ SetFilter = (*UserBlockFilter)(nil)

// DefaultUserBlockPrefix 是默认的 key 前缀。
const DefaultUserBlockPrefix = "user:block"

// NewUserBlockFilter 创建一个用户屏蔽过滤器。
func NewUserBlockFilter(storeAdapter *StoreAdapter, keyPrefix string) *UserBlockFilter {
	var store UserBlockStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &UserBlockFilter{
		Store:     store,
		KeyPrefix: keyPrefix,
	}
}

func (f *UserBlockFilter) Name() string {
	return "filter.user_block"
}

func (f *UserBlockFilter) Excluded(ctx context.Context, rctx *core.RecommendContext) (map[string]struct{}, error) {
	if f.Store == nil || rctx == nil || rctx.UserID == "" {
		return map[string]struct{}{}, nil
	}
	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultUserBlockPrefix
	}
	blocked, err := f.Store.GetUserBlocks(ctx, rctx.UserID, keyPrefix)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}
	return toSet(blocked), nil
}

func (f *UserBlockFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}
	set, err := f.Excluded(ctx, rctx)
	if err != nil {
		return false, err
	}
	_, hit := set[item.ID]
	return hit, nil
}
