package rerank

import (
	"context"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
)

// CategoryFunc 返回新闻的类别，未知时返回空串。
type CategoryFunc func(ctx context.Context, newsID string) string

// Diversity 是按类别打散的 ReRank：先按分数稳定降序，再限制每个类别最多保留 MaxPerCategory 条。
// 放在 rerank.topn 之前，保证截断后的结果覆盖更多类别。
//
// 类别来源优先级：
//   - label[LabelKey].Value
//   - meta[LabelKey] (string)
//   - Category(ctx, id)
//
// 没有类别的物品不受限制。
type Diversity struct {
	LabelKey       string // 默认 "category"
	MaxPerCategory int    // 默认 1
	Category       CategoryFunc
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	sorted := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			sorted = append(sorted, it)
		}
	}
	SortItems(sorted)

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(sorted))
	for _, it := range sorted {
		cate := n.category(ctx, it, key)
		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= limit {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}
	return out, nil
}

func (n *Diversity) category(ctx context.Context, it *core.Item, key string) string {
	if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
		return lbl.Value
	}
	if v, ok := it.Meta[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if n.Category != nil {
		return n.Category(ctx, it.ID)
	}
	return ""
}
