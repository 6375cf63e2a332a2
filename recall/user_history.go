package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/utils"
)

// UserHistory 从 HistoryStore 读取用户阅读历史，写入 rctx.History。
// 请求已经显式携带历史时不读取存储。
//
// 通常作为 Pipeline 的第一个节点，或由服务层在构建上下文时直接调用 Load。
type UserHistory struct {
	Store core.HistoryStore

	// Limit 最多读取最近的多少条，<= 0 表示全部
	Limit int
}

func (r *UserHistory) Name() string {
	return "recall.user_history"
}

func (r *UserHistory) Kind() pipeline.Kind {
	return pipeline.KindRecall
}

// Process 只填充上下文，items 原样透传。
func (r *UserHistory) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if err := r.Load(ctx, rctx); err != nil {
		return nil, err
	}
	return items, nil
}

// Load 在 rctx.History 为空且 UserID 非空时从存储加载历史。
func (r *UserHistory) Load(ctx context.Context, rctx *core.RecommendContext) error {
	if r.Store == nil || rctx == nil || rctx.UserID == "" || len(rctx.History) > 0 {
		return nil
	}
	ids, err := r.Store.History(ctx, rctx.UserID, r.Limit)
	if err != nil {
		return fmt.Errorf("load history for %s: %w", rctx.UserID, err)
	}
	rctx.History = ids
	rctx.PutLabel("history_source", utils.NewLabel("store", "recall"))
	return nil
}
