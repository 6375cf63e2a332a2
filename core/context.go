package core

import "github.com/rushteam/newsrec/pkg/utils"

// 请求级参数 key（RecommendContext.Params）。
const (
	ParamTopN      = "top_n"
	ParamPoolSize  = "pool_size"
	ParamWeighted  = "weighted"
	ParamRandom    = "random"
	ParamSeed      = "seed"
	ParamThreshold = "threshold"
)

// RecommendContext 承载一次推荐请求的用户/历史/参数，贯穿整个 Pipeline 透传。
// 每个请求独立分配，Node 之间可以写入，但不会跨请求共享。
type RecommendContext struct {
	UserID    string
	RequestID string

	// History 是按阅读顺序排列的新闻 ID，允许重复。
	History []string

	// Profile 是由 History 构建的兴趣向量；nil 表示没有可解析的历史（画像缺失）。
	// ProfileBuilt 区分"尚未构建"与"已构建但缺失"。
	Profile      []float64
	ProfileBuilt bool

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数：top_n, pool_size, weighted, random, seed, threshold
	Params map[string]any
}

// SetProfile 记录已构建的兴趣向量（可以为 nil）。
func (rctx *RecommendContext) SetProfile(v []float64) {
	rctx.Profile = v
	rctx.ProfileBuilt = true
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Param 读取请求参数。
func (rctx *RecommendContext) Param(key string) (any, bool) {
	if rctx == nil || rctx.Params == nil {
		return nil, false
	}
	v, ok := rctx.Params[key]
	return v, ok
}

// SetParam 写入请求参数。
func (rctx *RecommendContext) SetParam(key string, v any) {
	if rctx.Params == nil {
		rctx.Params = make(map[string]any)
	}
	rctx.Params[key] = v
}
