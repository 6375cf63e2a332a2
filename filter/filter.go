package filter

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// SetFilter 是基于 ID 集合的过滤器：每个请求只读取一次排除集合，
// 避免对候选池中的每个物品都访问一次存储。
type SetFilter interface {
	Filter

	// Excluded 返回本次请求需要排除的 ID 集合
	Excluded(ctx context.Context, rctx *core.RecommendContext) (map[string]struct{}, error)
}

func toSet(ids ...[]string) map[string]struct{} {
	n := 0
	for _, s := range ids {
		n += len(s)
	}
	set := make(map[string]struct{}, n)
	for _, s := range ids {
		for _, id := range s {
			set[id] = struct{}{}
		}
	}
	return set
}
