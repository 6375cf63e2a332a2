package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉。
// 过滤器出错时记录日志并跳过该过滤器，不中断推荐。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	// 集合型过滤器先整体取出排除集合
	sets := make(map[int]map[string]struct{}, len(n.Filters))
	for i, f := range n.Filters {
		sf, ok := f.(SetFilter)
		if !ok {
			continue
		}
		set, err := sf.Excluded(ctx, rctx)
		if err != nil {
			n.Logger.Warn().Err(err).Str("filter", f.Name()).Msg("filter skipped")
			sets[i] = nil
			continue
		}
		sets[i] = set
	}

	out := make([]*core.Item, 0, len(items))
	filtered := 0
	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for i, f := range n.Filters {
			if set, ok := sets[i]; ok {
				if _, hit := set[item.ID]; hit {
					reason = f.Name()
					break
				}
				continue
			}
			hit, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if hit {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			filtered++
			item.PutLabel("filtered", utils.NewLabel("true", reason))
			continue
		}
		out = append(out, item)
	}

	n.Logger.Debug().Int("filtered", filtered).Int("kept", len(out)).Msg("filter done")
	return out, nil
}
