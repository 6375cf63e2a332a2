package rerank

import (
	"context"
	"fmt"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/conv"
	"github.com/rushteam/newsrec/pkg/dsl"
	"github.com/rushteam/newsrec/pkg/utils"
)

// 阈值打标写入的 Label。
const (
	LabelAboveThreshold = "above_threshold"
	LabelRelevance      = "relevance"

	RelevanceRecommended  = "recommended"
	RelevanceLessRelevant = "less_relevant"
)

// DefaultThresholdExpr 是默认的打标规则。
const DefaultThresholdExpr = "item.score >= threshold"

// ThresholdNode 按 CEL 规则给每个物品打 above_threshold / relevance 标签。
// 只打标，不过滤，也不改变顺序。
//
// 阈值取值顺序：请求参数 threshold > 节点配置 Threshold。
type ThresholdNode struct {
	Threshold float64

	// Expr 为空时使用 DefaultThresholdExpr
	Expr string

	prg *dsl.Program
}

// NewThresholdNode 编译规则并创建节点。
func NewThresholdNode(threshold float64, expr string) (*ThresholdNode, error) {
	if expr == "" {
		expr = DefaultThresholdExpr
	}
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rerank.threshold: %w", err)
	}
	return &ThresholdNode{Threshold: threshold, Expr: expr, prg: prg}, nil
}

func (n *ThresholdNode) Name() string {
	return "rerank.threshold"
}

func (n *ThresholdNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *ThresholdNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	prg := n.prg
	if prg == nil {
		expr := n.Expr
		if expr == "" {
			expr = DefaultThresholdExpr
		}
		var err error
		if prg, err = dsl.Compile(expr); err != nil {
			return nil, err
		}
	}

	threshold := n.Threshold
	if v, ok := rctx.Param(core.ParamThreshold); ok {
		if f, ok := conv.ToFloat64(v); ok {
			threshold = f
		}
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		above, err := prg.Eval(it, rctx, threshold)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		if it.Labels == nil {
			it.Labels = make(map[string]utils.Label, 2)
		}
		it.Labels[LabelAboveThreshold] = utils.BoolLabel(above, "rerank")
		relevance := RelevanceLessRelevant
		if above {
			relevance = RelevanceRecommended
		}
		it.Labels[LabelRelevance] = utils.NewLabel(relevance, "rerank")
	}
	return items, nil
}
