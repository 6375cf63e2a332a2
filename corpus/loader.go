package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/newsrec/core"
)

// 产物文件名。
const (
	IndexFile   = "all2idx.json"
	MatrixFile  = "tfidf.json"
	NewsTSVFile = "news.tsv"
	NewsCSVFile = "news.csv"
	MetricsFile = "metrics.csv"
	VocabFile   = "vocab.txt"

	zstdExt = ".zst"
)

// Loader 从目录加载冻结的语料产物。
//
// 必需文件：all2idx.json、tfidf.json、news.tsv|news.csv、metrics.csv；
// 可选文件：vocab.txt。json/txt 文件可以带 .zst 后缀（zstd 压缩）。
type Loader struct {
	Dir    string
	Logger zerolog.Logger
}

// LoadDir 是 (&Loader{Dir: dir, Logger: zerolog.Nop()}).Load 的简写。
func LoadDir(ctx context.Context, dir string) (*Bundle, error) {
	l := &Loader{Dir: dir, Logger: zerolog.Nop()}
	return l.Load(ctx)
}

// Load 并发读取各产物文件并校验组装为 Bundle。
// 缺失的必需文件一次性全部列出，返回 core.ErrArtifactMissing。
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	start := time.Now()

	indexPath, indexOK := l.find(IndexFile, IndexFile+zstdExt)
	matrixPath, matrixOK := l.find(MatrixFile, MatrixFile+zstdExt)
	newsPath, newsOK := l.find(NewsCSVFile, NewsTSVFile)
	metricsPath, metricsOK := l.find(MetricsFile)
	vocabPath, vocabOK := l.find(VocabFile, VocabFile+zstdExt)

	var missing []string
	if !indexOK {
		missing = append(missing, IndexFile)
	}
	if !matrixOK {
		missing = append(missing, MatrixFile)
	}
	if !newsOK {
		missing = append(missing, NewsTSVFile+"|"+NewsCSVFile)
	}
	if !metricsOK {
		missing = append(missing, MetricsFile)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s in %s", core.ErrArtifactMissing, strings.Join(missing, ", "), l.Dir)
	}

	var (
		mapping map[string]int
		csr     CSR
		docs    []Document
		eval    Evaluation
		vocab   *Vocabulary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readFile(gctx, indexPath, func(r io.Reader) error {
			return json.NewDecoder(r).Decode(&mapping)
		})
	})
	g.Go(func() error {
		return readFile(gctx, matrixPath, func(r io.Reader) error {
			return json.NewDecoder(r).Decode(&csr)
		})
	})
	g.Go(func() error {
		return readFile(gctx, newsPath, func(r io.Reader) (err error) {
			if strings.HasSuffix(newsPath, ".tsv") {
				docs, err = ParseNewsTSV(r)
			} else {
				docs, err = ParseNewsCSV(r)
			}
			return err
		})
	})
	g.Go(func() error {
		return readFile(gctx, metricsPath, func(r io.Reader) (err error) {
			eval, err = ParseEvaluationCSV(r)
			return err
		})
	})
	if vocabOK {
		g.Go(func() error {
			return readFile(gctx, vocabPath, func(r io.Reader) (err error) {
				vocab, err = ReadVocabulary(r)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mat, err := NewMatrix(csr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", matrixPath, err)
	}
	idx, err := NewIndex(mapping, mat.Rows())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", indexPath, err)
	}
	bundle, err := NewBundle(idx, mat, vocab, NewMemoryCatalog(docs), eval)
	if err != nil {
		return nil, err
	}

	l.Logger.Info().
		Str("dir", l.Dir).
		Int("documents", idx.Len()).
		Int("rows", mat.Rows()).
		Int("terms", mat.Cols()).
		Int("nnz", mat.Nnz()).
		Int("catalog", bundle.Catalog.Len()).
		Bool("vocab", vocab.Available()).
		Dur("elapsed", time.Since(start)).
		Msg("corpus bundle loaded")
	return bundle, nil
}

// find 按候选顺序返回第一个存在的文件。
func (l *Loader) find(names ...string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(l.Dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

func readFile(ctx context.Context, path string, decode func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrArtifactMissing, path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, zstdExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	if err := decode(r); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
