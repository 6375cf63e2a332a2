package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/newsrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
		cel.Variable("threshold", cel.DoubleType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式（CEL 语法），可被多个 goroutine 并发执行。
//
// 可用变量：
//   - item.id / item.score / item.meta / item.labels
//   - label.<key>：Label 的 Value（不存在的 key 需要先用 "key" in label 判断）
//   - rctx.user_id / rctx.history_len / rctx.profile_absent / rctx.params
//   - threshold：本次请求的展示阈值
//
// 示例：
//   - `item.score >= threshold`
//   - `item.score >= threshold && label.category != "lifestyle"`
//   - `rctx.profile_absent || item.score > 0.5`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；结果类型在 Eval 时检查，必须为 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// MustCompile 与 Compile 相同，编译失败时 panic（用于包级常量表达式）。
func MustCompile(expr string) *Program {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String 返回原始表达式。
func (p *Program) String() string {
	return p.expr
}

// Eval 对单个 item 求值。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext, threshold float64) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx, threshold))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 是一次性编译并求值的便捷函数；空表达式恒为 true。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext, threshold float64) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(item, rctx, threshold)
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext, threshold float64) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	labelValues := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{
			"value":  v.Value,
			"source": v.Source,
		}
		labelValues[k] = v.Value
	}

	meta := item.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	r := map[string]any{
		"user_id":        "",
		"history_len":    int64(0),
		"profile_absent": true,
		"params":         map[string]any{},
	}
	if rctx != nil {
		r["user_id"] = rctx.UserID
		r["history_len"] = int64(len(rctx.History))
		r["profile_absent"] = rctx.Profile == nil
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item": map[string]any{
			"id":     item.ID,
			"score":  item.Score,
			"meta":   meta,
			"labels": labels,
		},
		"label":     labelValues,
		"rctx":      r,
		"threshold": threshold,
	}
}
