package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MIND 数据集的列定义（TSV 无表头）。
var (
	NewsColumns     = []string{"news_id", "category", "subcategory", "title", "abstract", "url", "title_entities", "abstract_entities"}
	BehaviorColumns = []string{"impression_id", "user_id", "time", "history", "impressions"}
)

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// ParseNewsTSV 解析 MIND news.tsv（无表头），至少需要 news_id/category/subcategory/title 四列。
func ParseNewsTSV(r io.Reader) ([]Document, error) {
	cr := newTSVReader(r)
	docs := make([]Document, 0, 1024)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read news line %d: %w", line, err)
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("news line %d: %d columns, want at least 4", line, len(rec))
		}
		docs = append(docs, Document{
			ID:          rec[0],
			Category:    rec[1],
			Subcategory: rec[2],
			Title:       rec[3],
			Abstract:    field(rec, 4),
			URL:         field(rec, 5),
		})
	}
	return docs, nil
}

// ParseNewsCSV 解析带表头的 news.csv（convert 的输出），按列名取值。
func ParseNewsCSV(r io.Reader) ([]Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read news header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols["news_id"]; !ok {
		return nil, fmt.Errorf("news csv: missing news_id column")
	}
	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return field(rec, i)
	}

	docs := make([]Document, 0, 1024)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read news line %d: %w", line, err)
		}
		docs = append(docs, Document{
			ID:          get(rec, "news_id"),
			Category:    get(rec, "category"),
			Subcategory: get(rec, "subcategory"),
			Title:       get(rec, "title"),
			Abstract:    get(rec, "abstract"),
			URL:         get(rec, "url"),
		})
	}
	return docs, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// ConvertTSV 把 MIND 的 news.tsv / behaviors.tsv 转为带表头的 CSV，写到同目录的 {stem}.csv。
// 文件名为 news.tsv 时按新闻表处理，其余按行为表处理。
func ConvertTSV(tsvPath string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(tsvPath), filepath.Ext(tsvPath))
	columns := BehaviorColumns
	if stem == "news" {
		columns = NewsColumns
	}

	in, err := os.Open(tsvPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", tsvPath, err)
	}
	defer in.Close()

	outPath := filepath.Join(filepath.Dir(tsvPath), stem+".csv")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}

	if err := convertRecords(newTSVReader(in), csv.NewWriter(out), columns); err != nil {
		out.Close()
		return "", fmt.Errorf("convert %s: %w", tsvPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", outPath, err)
	}
	return outPath, nil
}

func convertRecords(cr *csv.Reader, cw *csv.Writer, columns []string) error {
	if err := cw.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) > len(columns) {
			return fmt.Errorf("line %d: %d columns, want %d", line, len(rec), len(columns))
		}
		for i := range row {
			row[i] = field(rec, i)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
