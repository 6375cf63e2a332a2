package recall

import (
	"context"
	"math/rand"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/conv"
	"github.com/rushteam/newsrec/pkg/utils"
)

// SelectCandidates 从语料中选出候选池：剔除已读（按 ID 集合判断），再截断到 poolSize。
//
//   - random=false：保持语料顺序，取前 poolSize 个
//   - random=true：用 seed 初始化的伪随机数做无放回均匀抽样；
//     可选数量不超过 poolSize 时原样返回（语料顺序，不抽样）
//   - poolSize <= 0：返回空池
//
// 相同的 (universe, history, poolSize, random, seed) 在任意 goroutine 上结果相同。
func SelectCandidates(universe, history []string, poolSize int, random bool, seed int64) []string {
	if poolSize <= 0 {
		return []string{}
	}

	read := make(map[string]struct{}, len(history))
	for _, id := range history {
		read[id] = struct{}{}
	}
	eligible := make([]string, 0, len(universe))
	for _, id := range universe {
		if _, ok := read[id]; ok {
			continue
		}
		eligible = append(eligible, id)
	}

	if len(eligible) <= poolSize {
		return eligible
	}
	if !random {
		return eligible[:poolSize]
	}

	// 部分 Fisher–Yates：只打乱前 poolSize 个位置
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < poolSize; i++ {
		j := i + rng.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	return eligible[:poolSize]
}

// 候选池默认值。
const (
	DefaultPoolSize = 20000
	DefaultSeed     = 42
)

// Candidates 是候选池召回节点：语料全集减去阅读历史。
//
// 请求参数（rctx.Params）pool_size / random / seed 覆盖节点配置。
type Candidates struct {
	// Universe 返回语料枚举顺序的全部 ID，调用方只读
	Universe func() []string

	PoolSize int
	Random   bool
	Seed     int64
}

var (
	_ Source        = (*Candidates)(nil)
	_ pipeline.Node = (*Candidates)(nil)
)

func (r *Candidates) Name() string {
	return "recall.candidates"
}

func (r *Candidates) Kind() pipeline.Kind {
	return pipeline.KindRecall
}

func (r *Candidates) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Candidates) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Universe == nil {
		return []*core.Item{}, nil
	}

	poolSize := r.PoolSize
	if poolSize == 0 {
		poolSize = DefaultPoolSize
	}
	random := r.Random
	seed := r.Seed

	if v, ok := rctx.Param(core.ParamPoolSize); ok {
		if n, ok := conv.ToInt64(v); ok {
			poolSize = int(n)
		}
	}
	if v, ok := rctx.Param(core.ParamRandom); ok {
		if b, ok := v.(bool); ok {
			random = b
		}
	}
	if v, ok := rctx.Param(core.ParamSeed); ok {
		if n, ok := conv.ToInt64(v); ok {
			seed = n
		}
	}

	var history []string
	if rctx != nil {
		history = rctx.History
	}
	ids := SelectCandidates(r.Universe(), history, poolSize, random, seed)

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.NewLabel("candidates", "recall"))
		out = append(out, it)
	}
	return out, nil
}
