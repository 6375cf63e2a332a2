package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/pipeline"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/newsrec/config/builders"
// 以触发内置 Node（recall.candidates、rank.cosine、rerank.topn、rerank.threshold 等）的 init 注册。

// Deps 是构建 Node 时可用的共享依赖。
type Deps struct {
	Bundle  *corpus.Bundle
	Store   core.Store        // 过滤名单等 KV，可以为 nil
	History core.HistoryStore // 阅读历史，可以为 nil
	Logger  zerolog.Logger

	// Threshold 是默认展示阈值（评估表或配置）
	Threshold float64

	// Weighted 是画像默认是否时间加权
	Weighted bool
}

// NodeBuilder 根据节点配置与共享依赖构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder func(cfg map[string]any, deps Deps) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
// 建议在各组件的 init 中调用，例如：func init() { config.Register("rank.cosine", BuildCosineNode) }
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回绑定了 deps 的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		b := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return b(cfg, deps)
		})
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for _, nc := range cfg.Pipeline.Nodes {
		if _, ok := defaultBuilders[nc.Type]; !ok {
			types := make([]string, 0, len(defaultBuilders))
			for t := range defaultBuilders {
				types = append(types, t)
			}
			sort.Strings(types)
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, types)
		}
	}
	return nil
}

// BuildPipeline 校验并构建 Pipeline。cfg 为 nil 时使用 pipeline.DefaultConfig。
func BuildPipeline(cfg *pipeline.Config, deps Deps) (*pipeline.Pipeline, error) {
	if cfg == nil {
		cfg = pipeline.DefaultConfig()
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	p, err := cfg.BuildPipeline(DefaultFactory(deps))
	if err != nil {
		return nil, err
	}
	p.Logger = deps.Logger
	return p, nil
}
