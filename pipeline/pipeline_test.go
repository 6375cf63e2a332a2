package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pipeline"
)

type appendNode struct {
	name string
	id   string
	err  error
}

func (n *appendNode) Name() string        { return n.name }
func (n *appendNode) Kind() pipeline.Kind { return pipeline.KindRecall }
func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipeline_Run(t *testing.T) {
	var observed []string
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{&appendNode{name: "a", id: "N1"}, &appendNode{name: "b", id: "N2"}},
		Observe: func(node pipeline.Node, _ time.Duration, out int, err error) {
			assert.NoError(t, err)
			observed = append(observed, node.Name())
			assert.Equal(t, len(observed), out)
		},
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "N2", out[1].ID)
	assert.Equal(t, []string{"a", "b"}, observed)
	assert.Equal(t, []string{"a", "b"}, p.Names())
}

func TestPipeline_NodeError(t *testing.T) {
	boom := errors.New("boom")
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&appendNode{name: "a", id: "N1"},
		&appendNode{name: "broken", err: boom},
		&appendNode{name: "c", id: "N3"},
	}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestPipeline_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{&appendNode{name: "a", id: "N1"}}}
	_, err := p.Run(ctx, &core.RecommendContext{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseYAML(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: diverse
  nodes:
    - type: recall.candidates
      config:
        pool_size: 500
    - type: rank.cosine
    - type: rerank.topn
      config:
        n: 5
`))
	require.NoError(t, err)
	assert.Equal(t, "diverse", cfg.Pipeline.Name)
	require.Len(t, cfg.Pipeline.Nodes, 3)
	assert.Equal(t, 500, cfg.Pipeline.Nodes[0].Config["pool_size"])
	assert.Nil(t, cfg.Pipeline.Nodes[1].Config)

	_, err = pipeline.ParseYAML([]byte("pipeline:\n  name: empty\n"))
	require.Error(t, err)
	_, err = pipeline.ParseYAML([]byte("pipeline: ["))
	require.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  nodes:\n    - type: rank.cosine\n"), 0o644))
	cfg, err := pipeline.LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "rank.cosine", cfg.Pipeline.Nodes[0].Type)

	_, err = pipeline.LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_BuildPipeline(t *testing.T) {
	factory := pipeline.NewNodeFactory()
	var gotConfig map[string]any
	factory.Register("recall.candidates", func(cfg map[string]any) (pipeline.Node, error) {
		gotConfig = cfg
		return &appendNode{name: "recall.candidates", id: "N1"}, nil
	})
	assert.True(t, factory.Has("recall.candidates"))
	assert.False(t, factory.Has("rank.cosine"))

	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "recall.candidates"}}
	p, err := cfg.BuildPipeline(factory)
	require.NoError(t, err)
	assert.Equal(t, []string{"recall.candidates"}, p.Names())
	assert.NotNil(t, gotConfig, "nil node config becomes an empty map")

	_, err = pipeline.DefaultConfig().BuildPipeline(factory)
	require.Error(t, err)
}
