// Package explain 给出推荐的词级解释：画像与候选新闻各自权重最高的词。
package explain

import (
	"sort"

	"github.com/rushteam/newsrec/corpus"
)

// TermWeight 是 (词, 权重) 对。
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Explanation 是一条推荐的解释。两个列表都不超过 topK 条，权重严格为正。
type Explanation struct {
	ProfileTerms []TermWeight `json:"profile_terms"`
	ItemTerms    []TermWeight `json:"item_terms"`
}

// Empty 判断解释是否为空。
func (e Explanation) Empty() bool {
	return len(e.ProfileTerms) == 0 && len(e.ItemTerms) == 0
}

// Explain 返回画像与候选新闻的 topK 关键词。
// 画像缺失、词表缺失或为空时两侧都返回空列表。
func Explain(profile []float64, item corpus.SparseVector, vocab *corpus.Vocabulary, topK int) Explanation {
	empty := Explanation{ProfileTerms: []TermWeight{}, ItemTerms: []TermWeight{}}
	if profile == nil || !vocab.Available() || topK <= 0 {
		return empty
	}

	idx := make([]int, len(profile))
	for i := range idx {
		idx[i] = i
	}
	return Explanation{
		ProfileTerms: TopTerms(idx, profile, vocab, topK),
		ItemTerms:    TopTerms(item.Indices, item.Values, vocab, topK),
	}
}

// TopTerms 按权重降序（同权重按列号升序）取前 topK 个词，遇到第一个非正权重即停止。
// indices 与 weights 一一对应。
func TopTerms(indices []int, weights []float64, vocab *corpus.Vocabulary, topK int) []TermWeight {
	if topK <= 0 || len(indices) == 0 {
		return []TermWeight{}
	}

	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		wa, wb := weights[order[a]], weights[order[b]]
		if wa != wb {
			return wa > wb
		}
		return indices[order[a]] < indices[order[b]]
	})

	out := make([]TermWeight, 0, min(topK, len(order)))
	for _, k := range order {
		if len(out) >= topK {
			break
		}
		w := weights[k]
		if w <= 0 {
			break
		}
		term, ok := vocab.Term(indices[k])
		if !ok {
			continue
		}
		out = append(out, TermWeight{Term: term, Weight: w})
	}
	return out
}
