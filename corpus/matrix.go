package corpus

import (
	"fmt"
	"math"

	"github.com/rushteam/newsrec/core"
)

// SparseVector 是词权重矩阵中的一行：列号 + 对应权重。
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// Nnz returns the number of stored entries.
func (v SparseVector) Nnz() int {
	return len(v.Indices)
}

// Dot 计算与稠密向量的内积，越界列忽略。
func (v SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(dense) {
			sum += v.Values[i] * dense[idx]
		}
	}
	return sum
}

// L2Norm returns the Euclidean norm of the stored values.
func (v SparseVector) L2Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// ToDense 展开为长度为 Dim 的稠密向量。
func (v SparseVector) ToDense() []float64 {
	dense := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		if idx < v.Dim {
			dense[idx] += v.Values[i]
		}
	}
	return dense
}

// CSR 是压缩稀疏行矩阵的序列化形式，字段名与 scipy.sparse.csr_matrix 一致。
type CSR struct {
	Shape   [2]int    `json:"shape"`
	Indptr  []int     `json:"indptr"`
	Indices []int     `json:"indices"`
	Data    []float64 `json:"data"`
}

// Matrix 是只读的 TF-IDF 词权重矩阵（行 = 文档，列 = 词表）。
// 构建后不可变，可被所有请求并发读取；行范数在构建时预先计算。
type Matrix struct {
	rows    int
	cols    int
	indptr  []int
	indices []int
	data    []float64
	norms   []float64
}

// NewMatrix 校验 CSR 结构并构建矩阵。结构不一致返回 core.ErrMalformedMatrix。
func NewMatrix(csr CSR) (*Matrix, error) {
	rows, cols := csr.Shape[0], csr.Shape[1]
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative shape %v", core.ErrMalformedMatrix, csr.Shape)
	}
	if len(csr.Indptr) != rows+1 {
		return nil, fmt.Errorf("%w: indptr length %d, want %d", core.ErrMalformedMatrix, len(csr.Indptr), rows+1)
	}
	if csr.Indptr[0] != 0 {
		return nil, fmt.Errorf("%w: indptr[0] = %d, want 0", core.ErrMalformedMatrix, csr.Indptr[0])
	}
	for r := 0; r < rows; r++ {
		if csr.Indptr[r+1] < csr.Indptr[r] {
			return nil, fmt.Errorf("%w: indptr decreases at row %d", core.ErrMalformedMatrix, r)
		}
	}
	nnz := csr.Indptr[rows]
	if len(csr.Indices) != nnz || len(csr.Data) != nnz {
		return nil, fmt.Errorf("%w: nnz %d, indices %d, data %d", core.ErrMalformedMatrix, nnz, len(csr.Indices), len(csr.Data))
	}
	for i, c := range csr.Indices {
		if c < 0 || c >= cols {
			return nil, fmt.Errorf("%w: column %d at position %d outside [0, %d)", core.ErrMalformedMatrix, c, i, cols)
		}
	}

	m := &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  csr.Indptr,
		indices: csr.Indices,
		data:    csr.Data,
		norms:   make([]float64, rows),
	}
	for r := 0; r < rows; r++ {
		var sum float64
		for _, x := range m.data[m.indptr[r]:m.indptr[r+1]] {
			sum += x * x
		}
		m.norms[r] = math.Sqrt(sum)
	}
	return m, nil
}

// Rows 返回文档数。
func (m *Matrix) Rows() int { return m.rows }

// Cols 返回词表维度。
func (m *Matrix) Cols() int { return m.cols }

// Nnz 返回非零元个数。
func (m *Matrix) Nnz() int { return len(m.data) }

// Row 返回第 r 行。返回值与矩阵共享底层数组，调用方只读。
func (m *Matrix) Row(r int) (SparseVector, error) {
	if r < 0 || r >= m.rows {
		return SparseVector{}, fmt.Errorf("%w: row %d, matrix has %d rows", core.ErrRowOutOfRange, r, m.rows)
	}
	lo, hi := m.indptr[r], m.indptr[r+1]
	return SparseVector{
		Indices: m.indices[lo:hi:hi],
		Values:  m.data[lo:hi:hi],
		Dim:     m.cols,
	}, nil
}

// RowNorm 返回第 r 行的 L2 范数（构建时已缓存）。
func (m *Matrix) RowNorm(r int) (float64, error) {
	if r < 0 || r >= m.rows {
		return 0, fmt.Errorf("%w: row %d, matrix has %d rows", core.ErrRowOutOfRange, r, m.rows)
	}
	return m.norms[r], nil
}

// AccumulateRow 把第 r 行乘以 weight 累加进稠密向量 dst（长度须等于列数）。
func (m *Matrix) AccumulateRow(dst []float64, r int, weight float64) error {
	if len(dst) != m.cols {
		return fmt.Errorf("%w: dst length %d, matrix has %d columns", core.ErrDimensionMismatch, len(dst), m.cols)
	}
	if r < 0 || r >= m.rows {
		return fmt.Errorf("%w: row %d, matrix has %d rows", core.ErrRowOutOfRange, r, m.rows)
	}
	for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
		dst[m.indices[k]] += weight * m.data[k]
	}
	return nil
}

// CosineBatch 一次性计算 query 与多行的余弦相似度，结果与 rows 一一对应。
//
// 数值约定：共享非零维上的内积 / (‖query‖·‖row‖)；任一范数为 0 时结果为 0。
// query 长度与列数不一致返回 core.ErrDimensionMismatch；行号越界返回 core.ErrRowOutOfRange，
// 两者都在计算前整体校验，不会产生部分结果。
func (m *Matrix) CosineBatch(query []float64, rows []int) ([]float64, error) {
	if len(query) != m.cols {
		return nil, fmt.Errorf("%w: query length %d, matrix has %d columns", core.ErrDimensionMismatch, len(query), m.cols)
	}
	for _, r := range rows {
		if r < 0 || r >= m.rows {
			return nil, fmt.Errorf("%w: row %d, matrix has %d rows", core.ErrRowOutOfRange, r, m.rows)
		}
	}

	out := make([]float64, len(rows))
	qnorm := Norm(query)
	if qnorm == 0 {
		return out, nil
	}
	for i, r := range rows {
		rnorm := m.norms[r]
		if rnorm == 0 {
			continue
		}
		var dot float64
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			dot += m.data[k] * query[m.indices[k]]
		}
		out[i] = dot / (qnorm * rnorm)
	}
	return out, nil
}

// Norm returns the L2 norm of a dense vector.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
