// Package profile 由阅读历史构建兴趣向量（用户画像），并找出与画像最相似的历史阅读。
package profile

import (
	"fmt"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/rerank"
)

// Vector 是稠密兴趣向量，长度等于矩阵列数；nil 表示画像缺失。
type Vector []float64

// Absent 判断画像是否缺失。
func (v Vector) Absent() bool {
	return v == nil
}

// Weights 返回 n 条已解析历史的权重。
//
//   - weighted=false：全部为 1
//   - weighted=true：从 1.0 到 2.0 线性等距（含两端），越新的阅读权重越大；
//     只有 1 条时权重为 1.0
func Weights(n int, weighted bool) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	if !weighted || n == 1 {
		return w
	}
	step := 1.0 / float64(n-1)
	for i := range w {
		w[i] = 1 + float64(i)*step
	}
	w[n-1] = 2
	return w
}

// Build 由阅读历史构建兴趣向量。
//
// 先丢弃无法解析的 ID，再对剩余序列按 Weights 分配权重（先丢弃后加权），
// 结果为加权和除以权重和。没有可解析的历史时返回 nil, nil（画像缺失不是错误）。
// 索引与矩阵不一致（行号越界）返回 core.ErrRowOutOfRange。
func Build(history []string, idx *corpus.Index, mat *corpus.Matrix, weighted bool) (Vector, error) {
	rows := idx.Resolve(history)
	if len(rows) == 0 {
		return nil, nil
	}

	weights := Weights(len(rows), weighted)
	v := make(Vector, mat.Cols())
	var total float64
	for i, r := range rows {
		if err := mat.AccumulateRow(v, r, weights[i]); err != nil {
			return nil, fmt.Errorf("profile: history row %d: %w", r, err)
		}
		total += weights[i]
	}
	for i := range v {
		v[i] /= total
	}
	return v, nil
}

// MostSimilarHistory 返回与画像最相似的 topK 条历史阅读。
//
// 历史解析规则与 Build 相同（保序、保留重复）；所有已解析行一次批量打分，
// 按分数稳定降序截取 topK。返回的 ID 是解析成功的历史 ID。
// 画像缺失或没有可解析的历史时返回空列表。
func MostSimilarHistory(v Vector, history []string, idx *corpus.Index, mat *corpus.Matrix, topK int) ([]core.Scored, error) {
	if v.Absent() || topK <= 0 {
		return []core.Scored{}, nil
	}
	ids, rows := idx.ResolvePairs(history)
	if len(rows) == 0 {
		return []core.Scored{}, nil
	}

	scores, err := mat.CosineBatch(v, rows)
	if err != nil {
		return nil, fmt.Errorf("profile: similar history: %w", err)
	}
	scored := make([]core.Scored, len(ids))
	for i, id := range ids {
		scored[i] = core.Scored{ID: id, Score: scores[i]}
	}
	return rerank.TopN(scored, topK), nil
}
