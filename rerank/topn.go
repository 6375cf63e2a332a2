package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/conv"
)

// TopN 按分数稳定降序排序并截取前 n 个；同分保持输入顺序。n <= 0 返回空列表。
// 不修改入参。
func TopN(scored []core.Scored, n int) []core.Scored {
	if n <= 0 || len(scored) == 0 {
		return []core.Scored{}
	}
	out := make([]core.Scored, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SortItems 按 Score 稳定降序排序 items（原地）。
func SortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// TopNNode 是一个 Top-N 截断节点：稳定降序排序后截取前 N 个物品。
// 通常紧跟在打分（Rank）节点之后使用。
//
// N 的取值顺序：
//   - 请求参数 top_n（rctx.Params）
//   - 节点配置 N
//   - 都没有时使用 DefaultN
//
// 最终 N <= 0 时返回空列表。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.CosineNode{...},    // 打分
//	        &rerank.TopNNode{N: 20},  // 截取 Top 20
//	        &rerank.ThresholdNode{},  // 阈值打标
//	    },
//	}
type TopNNode struct {
	N int
}

// DefaultN 是未配置时的推荐条数。
const DefaultN = 10

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit == 0 {
		limit = DefaultN
	}
	if v, ok := rctx.Param(core.ParamTopN); ok {
		if p, ok := conv.ToInt64(v); ok {
			limit = int(p)
		}
	}
	if limit <= 0 {
		return []*core.Item{}, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	SortItems(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
