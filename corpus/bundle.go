package corpus

import (
	"fmt"
	"sync"

	"github.com/rushteam/newsrec/core"
)

// Bundle 是一次加载得到的完整语料产物：索引、词权重矩阵、词表、元数据、评估表。
// 构建后只读，由所有请求共享。
type Bundle struct {
	Index      *Index
	Matrix     *Matrix
	Vocab      *Vocabulary
	Catalog    *MemoryCatalog
	Evaluation Evaluation

	universe []string
}

// NewBundle 校验各部件之间的一致性并组装 Bundle。
//
// 结构性错误：
//   - 索引行号超出矩阵行数：core.ErrRowOutOfRange
//   - 词表非空但长度不等于矩阵列数：core.ErrVocabularyMismatch
func NewBundle(idx *Index, mat *Matrix, vocab *Vocabulary, catalog *MemoryCatalog, eval Evaluation) (*Bundle, error) {
	if idx == nil || mat == nil {
		return nil, fmt.Errorf("%w: bundle requires index and matrix", core.ErrArtifactMissing)
	}
	if maxRow := idx.MaxRow(); maxRow >= mat.Rows() {
		return nil, fmt.Errorf("%w: index references row %d, matrix has %d rows", core.ErrRowOutOfRange, maxRow, mat.Rows())
	}
	if vocab.Len() > 0 && vocab.Len() != mat.Cols() {
		return nil, fmt.Errorf("%w: vocabulary has %d terms, matrix has %d columns", core.ErrVocabularyMismatch, vocab.Len(), mat.Cols())
	}

	b := &Bundle{
		Index:      idx,
		Matrix:     mat,
		Vocab:      vocab,
		Catalog:    catalog,
		Evaluation: eval,
	}
	// 语料枚举顺序：优先元数据表顺序，否则按行号
	if catalog.Len() > 0 {
		b.universe = catalog.IDs()
	} else {
		b.universe = idx.IDs()
	}
	return b, nil
}

// Universe 返回语料中所有文档 ID（枚举顺序），调用方只读。
func (b *Bundle) Universe() []string {
	return b.universe
}

// ItemVector 返回文档的词权重行；未知 ID 返回 ok=false。
func (b *Bundle) ItemVector(id string) (SparseVector, bool, error) {
	r, ok := b.Index.Lookup(id)
	if !ok {
		return SparseVector{}, false, nil
	}
	row, err := b.Matrix.Row(r)
	if err != nil {
		return SparseVector{}, false, err
	}
	return row, true, nil
}

// Shared 是进程级共享的 Bundle：第一次 Get 时通过 load 构建，之后只读复用。
// 构建失败的错误同样被缓存，避免每个请求重复加载损坏的产物。
type Shared struct {
	get func() (*Bundle, error)
}

// NewShared 用显式的加载函数创建共享 Bundle。
func NewShared(load func() (*Bundle, error)) *Shared {
	return &Shared{get: sync.OnceValues(load)}
}

// SharedOf 包装一个已经构建好的 Bundle。
func SharedOf(b *Bundle) *Shared {
	return NewShared(func() (*Bundle, error) { return b, nil })
}

// Get 返回共享 Bundle。
func (s *Shared) Get() (*Bundle, error) {
	return s.get()
}
