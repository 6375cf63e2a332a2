package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/newsrec/core"
)

// Pipeline 把一次推荐拆成可组合的 Node 链：recall -> filter -> rank -> rerank。
type Pipeline struct {
	Nodes []Node

	// Logger 记录每个节点的耗时与输出条数（debug 级别），零值不输出。
	Logger zerolog.Logger

	// Observe 在每个节点执行后回调（out 为输出条数），用于打点；可以为 nil。
	Observe func(node Node, elapsed time.Duration, out int, err error)
}

// Run 依次执行各节点。每个节点执行前检查 ctx，超时或取消时立即返回。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: before %s: %w", node.Name(), err)
		}

		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		if p.Observe != nil {
			p.Observe(node, elapsed, len(next), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}

		p.Logger.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", elapsed).
			Msg("node done")
		cur = next
	}
	return cur, nil
}

// Names 返回节点名列表（用于日志与健康检查）。
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.Name()
	}
	return out
}
