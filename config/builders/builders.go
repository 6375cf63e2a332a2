package builders

import (
	"context"
	"fmt"

	"github.com/rushteam/newsrec/config"
	"github.com/rushteam/newsrec/filter"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/pkg/conv"
	"github.com/rushteam/newsrec/rank"
	"github.com/rushteam/newsrec/recall"
	"github.com/rushteam/newsrec/rerank"
)

func init() {
	config.Register("recall.candidates", BuildCandidatesNode)
	config.Register("recall.user_history", BuildUserHistoryNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.cosine", BuildCosineNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.threshold", BuildThresholdNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func requireBundle(deps config.Deps, node string) error {
	if deps.Bundle == nil {
		return fmt.Errorf("%s: corpus bundle not provided", node)
	}
	return nil
}

func BuildCandidatesNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	if err := requireBundle(deps, "recall.candidates"); err != nil {
		return nil, err
	}
	return &recall.Candidates{
		Universe: deps.Bundle.Universe,
		PoolSize: int(conv.ConfigGetInt64(cfg, "pool_size", recall.DefaultPoolSize)),
		Random:   conv.ConfigGet(cfg, "random", false),
		Seed:     conv.ConfigGetInt64(cfg, "seed", recall.DefaultSeed),
	}, nil
}

func BuildUserHistoryNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	if deps.History == nil {
		return nil, fmt.Errorf("recall.user_history: history store not provided")
	}
	return &recall.UserHistory{
		Store: deps.History,
		Limit: int(conv.ConfigGetInt64(cfg, "limit", 0)),
	}, nil
}

func BuildCosineNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	if err := requireBundle(deps, "rank.cosine"); err != nil {
		return nil, err
	}
	return &rank.CosineNode{
		Index:    deps.Bundle.Index,
		Matrix:   deps.Bundle.Matrix,
		Weighted: conv.ConfigGet(cfg, "weighted", deps.Weighted),
	}, nil
}

func BuildTopNNode(cfg map[string]any, _ config.Deps) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildThresholdNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	return rerank.NewThresholdNode(
		conv.ConfigGetFloat64(cfg, "threshold", deps.Threshold),
		conv.ConfigGet(cfg, "expr", ""),
	)
}

func BuildDiversityNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "category")
	if labelKey == "" {
		labelKey = "category"
	}
	node := &rerank.Diversity{
		LabelKey:       labelKey,
		MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 1)),
	}
	if deps.Bundle != nil && deps.Bundle.Catalog.Len() > 0 {
		catalog := deps.Bundle.Catalog
		field := conv.ConfigGet(cfg, "field", "category")
		node.Category = func(ctx context.Context, id string) string {
			doc, ok, err := catalog.Document(ctx, id)
			if err != nil || !ok {
				return ""
			}
			if field == "subcategory" {
				return doc.Subcategory
			}
			return doc.Category
		}
	}
	return node, nil
}

func BuildFilterNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	var adapter *filter.StoreAdapter
	if deps.Store != nil {
		adapter = filter.NewStoreAdapter(deps.Store)
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			if ids == nil {
				ids = []string{}
			}
			key := conv.ConfigGet(filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, adapter, key))
		case "user_block":
			keyPrefix := conv.ConfigGet(filterMap, "key_prefix", "")
			filters = append(filters, filter.NewUserBlockFilter(adapter, keyPrefix))
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters, Logger: deps.Logger}, nil
}
