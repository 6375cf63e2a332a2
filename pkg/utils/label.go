package utils

import "strconv"

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由节点自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank
}

// NewLabel 创建 Label。
func NewLabel(value, source string) Label {
	return Label{Value: value, Source: source}
}

// BoolLabel 以 "true"/"false" 形式记录布尔结论，例如 above_threshold。
func BoolLabel(v bool, source string) Label {
	return Label{Value: strconv.FormatBool(v), Source: source}
}

// Bool 把 Label.Value 解析为布尔值，无法解析时返回 false。
func (l Label) Bool() bool {
	b, err := strconv.ParseBool(l.Value)
	return err == nil && b
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
