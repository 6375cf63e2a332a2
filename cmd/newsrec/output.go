package main

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/newsrec/service"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// recommendationCSVHeader 是 recommend --format csv 的列。
var recommendationCSVHeader = []string{"rank", "news_id", "score", "above_threshold", "label", "title", "category", "subcategory"}

func writeRecommendationsCSV(w io.Writer, items []service.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recommendationCSVHeader); err != nil {
		return err
	}
	for _, it := range items {
		rec := []string{
			strconv.Itoa(it.Rank),
			it.NewsID,
			strconv.FormatFloat(it.Score, 'f', 6, 64),
			strconv.FormatBool(it.AboveThreshold),
			it.Label,
			it.Title,
			it.Category,
			it.Subcategory,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
