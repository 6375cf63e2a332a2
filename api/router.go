// Package api 是推荐服务的 HTTP 接口（chi 路由，JSON 请求/响应）。
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/service"
)

// Recommender 是 HTTP 层依赖的推荐服务接口，由 *service.Recommender 实现。
type Recommender interface {
	Ready() error
	Recommend(ctx context.Context, req service.Request) (*service.Response, error)
	Explain(ctx context.Context, req service.ExplainRequest) (*service.ExplainResponse, error)
	SimilarHistory(ctx context.Context, req service.SimilarHistoryRequest) (*service.SimilarHistoryResponse, error)
	Search(ctx context.Context, keyword string, limit int) ([]corpus.Document, error)
	Document(ctx context.Context, id string) (corpus.Document, bool, error)
	Evaluation() (*service.EvaluationResponse, error)
}

var _ Recommender = (*service.Recommender)(nil)

// Handler 持有 HTTP 处理函数的依赖。
type Handler struct {
	svc    Recommender
	logger zerolog.Logger
}

// NewRouter 构建路由。
//
//	POST /v1/recommend
//	POST /v1/explain
//	POST /v1/similar-history
//	GET  /v1/news?q=&limit=
//	GET  /v1/news/{id}
//	GET  /v1/evaluation
//	GET  /healthz
//	GET  /metrics
func NewRouter(svc Recommender, logger zerolog.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger.With().Str("component", "api").Logger()}

	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog(h.logger))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommend", h.Recommend)
		r.Post("/explain", h.Explain)
		r.Post("/similar-history", h.SimilarHistory)
		r.Get("/news", h.SearchNews)
		r.Get("/news/{id}", h.GetNews)
		r.Get("/evaluation", h.Evaluation)
	})
	return r
}

// NewServer 构建 http.Server。
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
	}
}
