// Package corpustest 提供测试用的小语料：6 篇新闻、6 个词。
//
//	         politics election football goal market stocks
//	N1 row0     1        1
//	N2 row1                       1       1
//	N3 row2                                     1      1
//	N4 row3     1                               1
//	N5 row4              2        1
//	N6 row5   (空行，范数为 0)
package corpustest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/corpus"
)

// Terms 是词表，第 i 个词对应第 i 列。
var Terms = []string{"politics", "election", "football", "goal", "market", "stocks"}

// Threshold 是评估表第一行的阈值。
const Threshold = 0.25

// Mapping 返回 ID -> 行号 映射。
func Mapping() map[string]int {
	return map[string]int{"N1": 0, "N2": 1, "N3": 2, "N4": 3, "N5": 4, "N6": 5}
}

// CSR 返回词权重矩阵。
func CSR() corpus.CSR {
	return corpus.CSR{
		Shape:   [2]int{6, len(Terms)},
		Indptr:  []int{0, 2, 4, 6, 8, 10, 10},
		Indices: []int{0, 1, 2, 3, 4, 5, 0, 4, 1, 2},
		Data:    []float64{1, 1, 1, 1, 1, 1, 1, 1, 2, 1},
	}
}

// Documents 返回元数据表，顺序即语料枚举顺序。
func Documents() []corpus.Document {
	return []corpus.Document{
		{ID: "N1", Category: "news", Subcategory: "politics", Title: "Election night live"},
		{ID: "N2", Category: "sports", Subcategory: "football", Title: "Late goal wins the derby"},
		{ID: "N3", Category: "finance", Subcategory: "markets", Title: "Stocks rally as markets open"},
		{ID: "N4", Category: "finance", Subcategory: "policy", Title: "Politics moves the market"},
		{ID: "N5", Category: "sports", Subcategory: "football", Title: "Football club election results"},
		{ID: "N6", Category: "lifestyle", Subcategory: "misc", Title: "An empty story"},
	}
}

// Evaluation 返回两行评估表。
func Evaluation() corpus.Evaluation {
	prauc := 0.61
	return corpus.Evaluation{Rows: []corpus.EvaluationRow{
		{Threshold: Threshold, Accuracy: 0.71, AUC: 0.66, F1: 0.42, Precision: 0.38, Recall: 0.47, PRAUC: &prauc, Rows: 1000},
		{Threshold: 0.5, Accuracy: 0.8, AUC: 0.66, F1: 0.2, Precision: 0.5, Recall: 0.12, Rows: 1000},
	}}
}

// Bundle 在内存中构建完整的测试 Bundle。
func Bundle(t testing.TB) *corpus.Bundle {
	t.Helper()
	mat, err := corpus.NewMatrix(CSR())
	require.NoError(t, err)
	idx, err := corpus.NewIndex(Mapping(), mat.Rows())
	require.NoError(t, err)
	b, err := corpus.NewBundle(idx, mat, corpus.NewVocabulary(Terms), corpus.NewMemoryCatalog(Documents()), Evaluation())
	require.NoError(t, err)
	return b
}

// DirOptions 控制 WriteDir 生成的文件形态。
type DirOptions struct {
	Compress  bool // json/txt 写成 .zst
	NewsTSV   bool // 写 MIND 原始 news.tsv 而不是 news.csv
	OmitVocab bool
	Omit      []string // 跳过的文件（不带 .zst 后缀）
}

// WriteDir 把测试语料写入目录，返回目录路径。
func WriteDir(t testing.TB, dir string, opts DirOptions) string {
	t.Helper()
	skip := make(map[string]bool, len(opts.Omit))
	for _, name := range opts.Omit {
		skip[name] = true
	}

	if !skip[corpus.IndexFile] {
		writeJSON(t, dir, corpus.IndexFile, opts.Compress, Mapping())
	}
	if !skip[corpus.MatrixFile] {
		writeJSON(t, dir, corpus.MatrixFile, opts.Compress, CSR())
	}
	if !opts.OmitVocab && !skip[corpus.VocabFile] {
		writeFile(t, dir, corpus.VocabFile, opts.Compress, func(w io.Writer) error {
			for _, term := range Terms {
				if _, err := io.WriteString(w, term+"\n"); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if opts.NewsTSV && !skip[corpus.NewsTSVFile] {
		writeFile(t, dir, corpus.NewsTSVFile, false, func(w io.Writer) error {
			cw := csv.NewWriter(w)
			cw.Comma = '\t'
			for _, d := range Documents() {
				if err := cw.Write([]string{d.ID, d.Category, d.Subcategory, d.Title, d.Abstract, d.URL, "[]", "[]"}); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		})
	}
	if !opts.NewsTSV && !skip[corpus.NewsCSVFile] {
		writeFile(t, dir, corpus.NewsCSVFile, false, func(w io.Writer) error {
			cw := csv.NewWriter(w)
			if err := cw.Write([]string{"news_id", "category", "subcategory", "title", "abstract", "url"}); err != nil {
				return err
			}
			for _, d := range Documents() {
				if err := cw.Write([]string{d.ID, d.Category, d.Subcategory, d.Title, d.Abstract, d.URL}); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		})
	}
	if !skip[corpus.MetricsFile] {
		writeFile(t, dir, corpus.MetricsFile, false, func(w io.Writer) error {
			cw := csv.NewWriter(w)
			if err := cw.Write([]string{"threshold", "accuracy", "auc", "f1_score", "precision", "recall", "pr_auc", "rows"}); err != nil {
				return err
			}
			for _, r := range Evaluation().Rows {
				prauc := ""
				if r.PRAUC != nil {
					prauc = ftoa(*r.PRAUC)
				}
				rec := []string{ftoa(r.Threshold), ftoa(r.Accuracy), ftoa(r.AUC), ftoa(r.F1), ftoa(r.Precision), ftoa(r.Recall), prauc, strconv.FormatInt(r.Rows, 10)}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		})
	}
	return dir
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeJSON(t testing.TB, dir, name string, compress bool, v any) {
	writeFile(t, dir, name, compress, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}

func writeFile(t testing.TB, dir, name string, compress bool, write func(io.Writer) error) {
	t.Helper()
	if compress {
		name += ".zst"
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(f)
		require.NoError(t, err)
		w = enc
	}
	require.NoError(t, write(w))
	if enc != nil {
		require.NoError(t, enc.Close())
	}
}
