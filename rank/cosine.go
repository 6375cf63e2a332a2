// Package rank 对候选池打分：兴趣向量与每篇候选新闻词权重行的余弦相似度。
package rank

import (
	"context"
	"fmt"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/utils"
	"github.com/rushteam/newsrec/profile"
)

// Score 对候选打分，结果与 candidates 一一对应、顺序相同。
//
//   - 画像缺失：全部 0 分
//   - 无法解析的候选保留原位置，0 分，不参与批量计算
//   - 其余候选一次性批量计算余弦相似度
//
// 画像长度与矩阵列数不一致返回 core.ErrDimensionMismatch；行号越界返回 core.ErrRowOutOfRange。
func Score(v profile.Vector, candidates []string, idx *corpus.Index, mat *corpus.Matrix) ([]core.Scored, error) {
	out := make([]core.Scored, len(candidates))
	for i, id := range candidates {
		out[i].ID = id
	}
	if len(candidates) == 0 || v.Absent() {
		return out, nil
	}

	positions := make([]int, 0, len(candidates))
	rows := make([]int, 0, len(candidates))
	for i, id := range candidates {
		if r, ok := idx.Lookup(id); ok {
			positions = append(positions, i)
			rows = append(rows, r)
		}
	}

	scores, err := mat.CosineBatch(v, rows)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	for k, pos := range positions {
		out[pos].Score = scores[k]
	}
	return out, nil
}

// CosineNode 是余弦打分节点：必要时先由 rctx.History 构建画像，再给每个物品写入 Score。
// 不排序，排序由后续的 rerank.topn 完成。
//
// 请求参数 weighted 覆盖节点配置 Weighted。
type CosineNode struct {
	Index    *corpus.Index
	Matrix   *corpus.Matrix
	Weighted bool
}

func (n *CosineNode) Name() string {
	return "rank.cosine"
}

func (n *CosineNode) Kind() pipeline.Kind {
	return pipeline.KindRank
}

func (n *CosineNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, fmt.Errorf("rank.cosine: nil recommend context")
	}
	if !rctx.ProfileBuilt {
		weighted := n.Weighted
		if v, ok := rctx.Param(core.ParamWeighted); ok {
			if b, ok := v.(bool); ok {
				weighted = b
			}
		}
		v, err := profile.Build(rctx.History, n.Index, n.Matrix, weighted)
		if err != nil {
			return nil, err
		}
		rctx.SetProfile(v)
	}

	ids := make([]string, 0, len(items))
	kept := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ids = append(ids, it.ID)
		kept = append(kept, it)
	}

	scored, err := Score(rctx.Profile, ids, n.Index, n.Matrix)
	if err != nil {
		return nil, err
	}
	for i, it := range kept {
		it.Score = scored[i].Score
		it.PutLabel("rank_model", utils.NewLabel("cosine", "rank"))
	}
	return kept, nil
}
