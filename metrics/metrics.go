// Package metrics 定义推荐服务的 Prometheus 指标，通过 /metrics 暴露。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推荐请求结果（RecommendRequests 的 outcome 标签）。
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeStructural = "structural"
	OutcomeTimeout    = "timeout"
	OutcomeError      = "error"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_recommend_requests_total",
			Help: "Recommend requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrec_recommend_duration_seconds",
			Help:    "End-to-end recommend latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrec_candidate_pool_size",
			Help:    "Candidate pool size per request",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	ProfileAbsent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_profile_absent_total",
			Help: "Requests whose history resolved to no corpus rows",
		},
	)

	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_pipeline_node_duration_seconds",
			Help:    "Pipeline node latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"node"},
	)

	BundleLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrec_bundle_load_duration_seconds",
			Help:    "Corpus bundle load time",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

// ObserveNode 记录单个节点耗时。
func ObserveNode(node string, elapsed time.Duration) {
	NodeDuration.WithLabelValues(node).Observe(elapsed.Seconds())
}

// ObserveRecommend 记录一次推荐请求。
func ObserveRecommend(outcome string, elapsed time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(elapsed.Seconds())
}
