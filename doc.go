// Package newsrec 是一个基于内容相似度的新闻推荐服务。
//
// 设计要点：
// - 冻结的 TF-IDF 词权重矩阵只读共享，所有请求并发读取
// - 画像 = 阅读历史词权重行的（时间）加权平均；打分 = 画像与候选行的余弦相似度
// - Pipeline-first: 候选池 → 过滤 → 打分 → TopN → 阈值打标，通过 Node 串联，可由 YAML 配置
// - Labels-first: 召回来源、过滤原因、阈值结论都以 Label 透传，便于解释与观测
package newsrec

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/newsrec/config"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/service"
)

// 轻量 facade：便于用户直接 import "newsrec" 使用核心抽象。
type (
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
	Kind        = pipeline.Kind
	Recommender = service.Recommender
	Request     = service.Request
	Response    = service.Response
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// Open 加载 dir 下的语料产物，返回使用默认配置与默认链路的推荐服务。
// 请求必须显式携带 history（没有配置历史存储）。
func Open(ctx context.Context, dir string) (*Recommender, error) {
	b, err := corpus.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	return service.New(service.Options{
		Bundle:    corpus.SharedOf(b),
		Recommend: config.Default().Recommend,
		Logger:    zerolog.Nop(),
	})
}
