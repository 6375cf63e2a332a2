package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EvaluationRow 是离线评估表（metrics.csv）中的一行。
type EvaluationRow struct {
	Threshold float64  `json:"threshold"`
	Accuracy  float64  `json:"accuracy"`
	AUC       float64  `json:"auc"`
	F1        float64  `json:"f1_score"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	PRAUC     *float64 `json:"pr_auc,omitempty"`
	Rows      int64    `json:"rows"`
}

// Evaluation 是评估表，第一行为主结果。
type Evaluation struct {
	Rows []EvaluationRow `json:"rows"`
}

// Primary 返回第一行评估结果。
func (e Evaluation) Primary() (EvaluationRow, bool) {
	if len(e.Rows) == 0 {
		return EvaluationRow{}, false
	}
	return e.Rows[0], true
}

// Threshold 返回评估得到的展示阈值；评估表为空时返回 fallback。
func (e Evaluation) Threshold(fallback float64) float64 {
	if row, ok := e.Primary(); ok {
		return row.Threshold
	}
	return fallback
}

// ParseEvaluationCSV 解析带表头的 metrics.csv，列顺序不限，缺失的列记为 0。
func ParseEvaluationCSV(r io.Reader) (Evaluation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Evaluation{}, nil
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("read metrics header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var eval Evaluation
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Evaluation{}, fmt.Errorf("read metrics line %d: %w", line, err)
		}
		p := metricsRecord{cols: cols, rec: rec, line: line}
		row := EvaluationRow{
			Threshold: p.float("threshold"),
			Accuracy:  p.float("accuracy"),
			AUC:       p.float("auc"),
			F1:        p.float("f1_score"),
			Precision: p.float("precision"),
			Recall:    p.float("recall"),
			Rows:      int64(p.float("rows")),
		}
		if _, ok := cols["pr_auc"]; ok {
			v := p.float("pr_auc")
			row.PRAUC = &v
		}
		if p.err != nil {
			return Evaluation{}, p.err
		}
		eval.Rows = append(eval.Rows, row)
	}
	return eval, nil
}

type metricsRecord struct {
	cols map[string]int
	rec  []string
	line int
	err  error
}

func (p *metricsRecord) float(name string) float64 {
	i, ok := p.cols[name]
	if !ok || i >= len(p.rec) {
		return 0
	}
	s := strings.TrimSpace(p.rec[i])
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("metrics line %d column %s: %w", p.line, name, err)
	}
	return v
}
