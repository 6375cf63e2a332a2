package pipeline

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成候选池
	KindFilter      Kind = "filter"      // 过滤阶段：剔除编辑黑名单等
	KindRank        Kind = "rank"        // 打分阶段：画像与候选的余弦相似度
	KindReRank      Kind = "rerank"      // 重排阶段：TopN 截断、阈值打标、多样性
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充元数据
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便 Recall 生成、Filter 截断、ReRank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
