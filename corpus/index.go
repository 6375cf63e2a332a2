package corpus

import (
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/rushteam/newsrec/core"
)

// Index 是只读的 文档 ID -> 矩阵行号 映射。
//
// 不变量：
//   - 行号落在 [0, numRows)
//   - 每一行最多被一个 ID 占用（用 roaring bitmap 记录占用情况）
//   - 未知 ID 不存在于映射中，不会被映射到哨兵值
type Index struct {
	rows     map[string]int
	byRow    []string
	occupied *roaring.Bitmap
}

// NewIndex 从 ID -> 行号 映射构建索引，numRows 为矩阵行数。
func NewIndex(mapping map[string]int, numRows int) (*Index, error) {
	if numRows < 0 || int64(numRows) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: invalid row count %d", core.ErrRowOutOfRange, numRows)
	}

	// 排序后遍历，保证报错信息稳定
	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	idx := &Index{
		rows:     make(map[string]int, len(mapping)),
		byRow:    make([]string, numRows),
		occupied: roaring.New(),
	}
	for _, id := range ids {
		r := mapping[id]
		if r < 0 || r >= numRows {
			return nil, fmt.Errorf("%w: id %q maps to row %d, matrix has %d rows", core.ErrRowOutOfRange, id, r, numRows)
		}
		if !idx.occupied.CheckedAdd(uint32(r)) {
			return nil, fmt.Errorf("%w: row %d claimed by %q and %q", core.ErrDuplicateRow, r, idx.byRow[r], id)
		}
		idx.rows[id] = r
		idx.byRow[r] = id
	}
	return idx, nil
}

// Len 返回已映射的 ID 数。
func (idx *Index) Len() int {
	return len(idx.rows)
}

// NumRows 返回索引构建时的矩阵行数。
func (idx *Index) NumRows() int {
	return len(idx.byRow)
}

// MaxRow 返回被占用的最大行号；空索引返回 -1。
func (idx *Index) MaxRow() int {
	if idx.occupied.IsEmpty() {
		return -1
	}
	return int(idx.occupied.Maximum())
}

// Lookup 返回 id 对应的行号。
func (idx *Index) Lookup(id string) (int, bool) {
	r, ok := idx.rows[id]
	return r, ok
}

// Covers 判断某一行是否被某个 ID 占用。
func (idx *Index) Covers(row int) bool {
	if row < 0 || int64(row) > math.MaxUint32 {
		return false
	}
	return idx.occupied.Contains(uint32(row))
}

// ID 返回占用某一行的 ID。
func (idx *Index) ID(row int) (string, bool) {
	if !idx.Covers(row) {
		return "", false
	}
	return idx.byRow[row], true
}

// Resolve 按输入顺序解析行号：未知 ID 直接丢弃，重复 ID 保留。
func (idx *Index) Resolve(ids []string) []int {
	rows := make([]int, 0, len(ids))
	for _, id := range ids {
		if r, ok := idx.rows[id]; ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// ResolvePairs 与 Resolve 相同，但同时返回解析成功的 ID（与行号一一对应）。
func (idx *Index) ResolvePairs(ids []string) ([]string, []int) {
	resolved := make([]string, 0, len(ids))
	rows := make([]int, 0, len(ids))
	for _, id := range ids {
		if r, ok := idx.rows[id]; ok {
			resolved = append(resolved, id)
			rows = append(rows, r)
		}
	}
	return resolved, rows
}

// IDs 按行号顺序返回所有已映射的 ID。
func (idx *Index) IDs() []string {
	out := make([]string, 0, len(idx.rows))
	it := idx.occupied.Iterator()
	for it.HasNext() {
		out = append(out, idx.byRow[it.Next()])
	}
	return out
}
