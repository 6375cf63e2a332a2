package recall

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// Source 表示一个可复用的召回源：根据请求上下文生成候选物品。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
