package service

import (
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/explain"
)

// Request 是一次推荐请求。History 与 UserID 至少提供一个：
// 只提供 UserID 时从阅读历史存储中读取。
// 指针字段为 nil 时使用配置中的默认值。
type Request struct {
	UserID  string   `json:"user_id,omitempty" validate:"omitempty,max=128"`
	History []string `json:"history,omitempty" validate:"omitempty,max=10000"`

	TopN      *int     `json:"top_n,omitempty" validate:"omitempty,gte=0,lte=1000"`
	PoolSize  *int     `json:"pool_size,omitempty" validate:"omitempty,gte=0"`
	Weighted  *bool    `json:"weighted,omitempty"`
	Random    *bool    `json:"random,omitempty"`
	Seed      *int64   `json:"seed,omitempty"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`

	// WithSimilarHistory 为 true 时在响应中附带与画像最相似的历史阅读
	WithSimilarHistory bool `json:"with_similar_history,omitempty"`
}

// Recommendation 是一条推荐结果。
type Recommendation struct {
	Rank           int     `json:"rank"`
	NewsID         string  `json:"news_id"`
	Score          float64 `json:"score"`
	AboveThreshold bool    `json:"above_threshold"`
	Label          string  `json:"label"` // recommended | less_relevant
	Title          string  `json:"title,omitempty"`
	Category       string  `json:"category,omitempty"`
	Subcategory    string  `json:"subcategory,omitempty"`
}

// HistoryMatch 是一条与画像相似的历史阅读。
type HistoryMatch struct {
	NewsID   string  `json:"news_id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Response 是推荐结果。
type Response struct {
	RequestID         string           `json:"request_id"`
	Items             []Recommendation `json:"items"`
	ProfileAbsent     bool             `json:"profile_absent"`
	HistoryResolved   int              `json:"history_resolved"`
	HistoryUnresolved int              `json:"history_unresolved"`
	Threshold         float64          `json:"threshold"`
	Warnings          []string         `json:"warnings,omitempty"`
	SimilarHistory    []HistoryMatch   `json:"similar_history,omitempty"`
}

// ExplainRequest 请求对某篇新闻的推荐做词级解释。画像由 History（或 UserID 对应的存储历史）重新构建。
type ExplainRequest struct {
	UserID   string   `json:"user_id,omitempty" validate:"omitempty,max=128"`
	History  []string `json:"history,omitempty" validate:"omitempty,max=10000"`
	Weighted *bool    `json:"weighted,omitempty"`
	NewsID   string   `json:"news_id" validate:"required,max=64"`
	TopK     int      `json:"top_k,omitempty" validate:"gte=0,lte=100"`
}

// ExplainResponse 是解释结果。Available 为 false 时（画像缺失、新闻不在语料中或词表缺失）两个列表为空。
type ExplainResponse struct {
	NewsID       string               `json:"news_id"`
	Available    bool                 `json:"available"`
	ProfileTerms []explain.TermWeight `json:"profile_terms"`
	ItemTerms    []explain.TermWeight `json:"item_terms"`
}

// SimilarHistoryRequest 请求与画像最相似的历史阅读。
type SimilarHistoryRequest struct {
	UserID   string   `json:"user_id,omitempty" validate:"omitempty,max=128"`
	History  []string `json:"history,omitempty" validate:"omitempty,max=10000"`
	Weighted *bool    `json:"weighted,omitempty"`
	TopK     int      `json:"top_k,omitempty" validate:"gte=0,lte=100"`
}

// SimilarHistoryResponse 是相似历史结果。
type SimilarHistoryResponse struct {
	ProfileAbsent bool           `json:"profile_absent"`
	Items         []HistoryMatch `json:"items"`
}

// EvaluationResponse 是离线评估结果与当前生效的阈值。
type EvaluationResponse struct {
	Threshold float64                `json:"threshold"`
	Rows      []corpus.EvaluationRow `json:"rows"`
}
