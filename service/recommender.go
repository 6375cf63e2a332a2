// Package service 把语料产物、推荐链路与存储组合成对外的推荐服务，供 HTTP 与 CLI 共用。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rushteam/newsrec/config"
	_ "github.com/rushteam/newsrec/config/builders"
	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/explain"
	"github.com/rushteam/newsrec/logging"
	"github.com/rushteam/newsrec/metrics"
	"github.com/rushteam/newsrec/pipeline"
	"github.com/rushteam/newsrec/profile"
	"github.com/rushteam/newsrec/recall"
	"github.com/rushteam/newsrec/rerank"
)

// Options 是 Recommender 的依赖。
type Options struct {
	// Bundle 是共享的语料产物（必需）
	Bundle *corpus.Shared

	// Catalog 覆盖随产物加载的元数据表（例如 SQLite），可以为 nil
	Catalog corpus.Catalog

	// History 阅读历史存储，可以为 nil（此时请求必须携带 history）
	History core.HistoryStore

	// Store 过滤名单等 KV，可以为 nil
	Store core.Store

	// Pipeline 推荐链路配置，nil 时使用默认链路
	Pipeline *pipeline.Config

	// BlacklistKey 不为空且使用默认链路时，在召回后插入黑名单过滤
	BlacklistKey string

	Recommend      config.Recommend
	HistoryLimit   int
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Recommender 是推荐服务。构建后并发安全：语料与链路只读共享，每个请求独立分配上下文。
type Recommender struct {
	opts     Options
	logger   zerolog.Logger
	validate *validator.Validate
	history  *recall.UserHistory
	pipeline func() (*pipeline.Pipeline, error)
}

// New 创建推荐服务。语料与链路在第一次使用时构建。
func New(opts Options) (*Recommender, error) {
	if opts.Bundle == nil {
		return nil, fmt.Errorf("service: corpus bundle is required")
	}
	r := &Recommender{
		opts:     opts,
		logger:   opts.Logger.With().Str("component", "service").Logger(),
		validate: validator.New(),
		history:  &recall.UserHistory{Store: opts.History, Limit: opts.HistoryLimit},
	}
	r.pipeline = sync.OnceValues(r.buildPipeline)
	return r, nil
}

func (r *Recommender) buildPipeline() (*pipeline.Pipeline, error) {
	b, err := r.opts.Bundle.Get()
	if err != nil {
		return nil, err
	}

	cfg := r.opts.Pipeline
	if cfg == nil {
		cfg = pipeline.DefaultConfig()
		if r.opts.BlacklistKey != "" {
			nodes := make([]pipeline.NodeConfig, 0, len(cfg.Pipeline.Nodes)+1)
			nodes = append(nodes, cfg.Pipeline.Nodes[0], pipeline.NodeConfig{
				Type: "filter",
				Config: map[string]any{"filters": []any{
					map[string]any{"type": "blacklist", "key": r.opts.BlacklistKey},
				}},
			})
			cfg.Pipeline.Nodes = append(nodes, cfg.Pipeline.Nodes[1:]...)
		}
	}

	p, err := config.BuildPipeline(cfg, config.Deps{
		Bundle:    b,
		Store:     r.opts.Store,
		History:   r.opts.History,
		Logger:    r.opts.Logger.With().Str("component", "pipeline").Logger(),
		Threshold: r.threshold(b),
		Weighted:  r.opts.Recommend.Weighted,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	p.Observe = func(node pipeline.Node, elapsed time.Duration, out int, err error) {
		metrics.ObserveNode(node.Name(), elapsed)
		if err == nil && node.Kind() == pipeline.KindRecall {
			metrics.CandidatePoolSize.Observe(float64(out))
		}
	}
	r.logger.Info().Strs("nodes", p.Names()).Msg("pipeline ready")
	return p, nil
}

func (r *Recommender) threshold(b *corpus.Bundle) float64 {
	return r.opts.Recommend.ResolveThreshold(b.Evaluation.Threshold)
}

// Ready 确认语料与链路都已成功构建。
func (r *Recommender) Ready() error {
	_, err := r.pipeline()
	return err
}

// Threshold 返回当前生效的展示阈值。
func (r *Recommender) Threshold() (float64, error) {
	b, err := r.opts.Bundle.Get()
	if err != nil {
		return 0, err
	}
	return r.threshold(b), nil
}

func (r *Recommender) invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", core.ErrInvalidRequest, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
}

// resolveHistory 返回请求携带的历史，或按 UserID 从存储中读取。
func (r *Recommender) resolveHistory(ctx context.Context, rctx *core.RecommendContext) error {
	if len(rctx.History) == 0 && rctx.UserID == "" {
		return fmt.Errorf("%w: history or user_id is required", core.ErrInvalidRequest)
	}
	if len(rctx.History) == 0 && r.opts.History == nil {
		return fmt.Errorf("%w: no history store configured, history is required", core.ErrInvalidRequest)
	}
	return r.history.Load(ctx, rctx)
}

func (r *Recommender) weighted(w *bool) bool {
	if w != nil {
		return *w
	}
	return r.opts.Recommend.Weighted
}

// Recommend 执行一次推荐。
func (r *Recommender) Recommend(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveRecommend(outcome(err), time.Since(start))
	}()

	if err := r.validate.Struct(req); err != nil {
		return nil, r.invalid(err)
	}
	if r.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RequestTimeout)
		defer cancel()
	}

	p, err := r.pipeline()
	if err != nil {
		return nil, err
	}
	b, err := r.opts.Bundle.Get()
	if err != nil {
		return nil, err
	}

	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = logging.NewRequestID()
		ctx = logging.WithRequestID(ctx, requestID)
	}
	rctx := &core.RecommendContext{
		UserID:    req.UserID,
		RequestID: requestID,
		History:   req.History,
	}
	if err := r.resolveHistory(ctx, rctx); err != nil {
		return nil, err
	}
	r.setParams(rctx, req, b)

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	threshold, _ := rctx.Params[core.ParamThreshold].(float64)
	resolved := len(b.Index.Resolve(rctx.History))
	resp = &Response{
		RequestID:         requestID,
		Items:             r.toRecommendations(ctx, items, threshold),
		ProfileAbsent:     rctx.Profile == nil,
		HistoryResolved:   resolved,
		HistoryUnresolved: len(rctx.History) - resolved,
		Threshold:         threshold,
	}
	if minHistory := r.opts.Recommend.MinHistory(); len(rctx.History) < minHistory {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("history has %d items; at least %d are recommended for a meaningful profile", len(rctx.History), minHistory))
	}
	if resp.ProfileAbsent {
		metrics.ProfileAbsent.Inc()
		resp.Warnings = append(resp.Warnings, "no history item was found in the corpus; all scores are 0")
	}

	if req.WithSimilarHistory {
		matches, err := profile.MostSimilarHistory(rctx.Profile, rctx.History, b.Index, b.Matrix, r.opts.Recommend.DefaultHistoryTopK())
		if err != nil {
			return nil, err
		}
		resp.SimilarHistory = r.toMatches(ctx, matches)
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", rctx.UserID).
		Int("history", len(rctx.History)).
		Int("resolved", resolved).
		Int("items", len(resp.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("recommend done")
	return resp, nil
}

func (r *Recommender) setParams(rctx *core.RecommendContext, req Request, b *corpus.Bundle) {
	cfg := r.opts.Recommend
	topN := cfg.DefaultTopN()
	if req.TopN != nil {
		topN = *req.TopN
	}
	poolSize := cfg.DefaultPoolSize()
	if req.PoolSize != nil {
		poolSize = *req.PoolSize
	}
	random := cfg.Random
	if req.Random != nil {
		random = *req.Random
	}
	seed := cfg.DefaultSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	threshold := r.threshold(b)
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	rctx.SetParam(core.ParamTopN, topN)
	rctx.SetParam(core.ParamPoolSize, poolSize)
	rctx.SetParam(core.ParamWeighted, r.weighted(req.Weighted))
	rctx.SetParam(core.ParamRandom, random)
	rctx.SetParam(core.ParamSeed, seed)
	rctx.SetParam(core.ParamThreshold, threshold)
}

func (r *Recommender) catalog() (corpus.Catalog, error) {
	if r.opts.Catalog != nil {
		return r.opts.Catalog, nil
	}
	b, err := r.opts.Bundle.Get()
	if err != nil {
		return nil, err
	}
	return b.Catalog, nil
}

func (r *Recommender) document(ctx context.Context, id string) corpus.Document {
	cat, err := r.catalog()
	if err != nil {
		return corpus.Document{}
	}
	doc, ok, err := cat.Document(ctx, id)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("news_id", id).Msg("catalog lookup failed")
		return corpus.Document{}
	}
	if !ok {
		return corpus.Document{}
	}
	return doc
}

func (r *Recommender) toRecommendations(ctx context.Context, items []*core.Item, threshold float64) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for i, it := range items {
		above := it.Score >= threshold
		if lbl, ok := it.Labels[rerank.LabelAboveThreshold]; ok {
			above = lbl.Bool()
		}
		label := rerank.RelevanceLessRelevant
		if above {
			label = rerank.RelevanceRecommended
		}
		doc := r.document(ctx, it.ID)
		out = append(out, Recommendation{
			Rank:           i + 1,
			NewsID:         it.ID,
			Score:          it.Score,
			AboveThreshold: above,
			Label:          label,
			Title:          doc.Title,
			Category:       doc.Category,
			Subcategory:    doc.Subcategory,
		})
	}
	return out
}

func (r *Recommender) toMatches(ctx context.Context, scored []core.Scored) []HistoryMatch {
	out := make([]HistoryMatch, 0, len(scored))
	for _, s := range scored {
		doc := r.document(ctx, s.ID)
		out = append(out, HistoryMatch{NewsID: s.ID, Score: s.Score, Title: doc.Title, Category: doc.Category})
	}
	return out
}

// buildProfile 为 Explain / SimilarHistory 重新构建画像。
func (r *Recommender) buildProfile(ctx context.Context, userID string, history []string, weighted *bool) (*corpus.Bundle, *core.RecommendContext, error) {
	b, err := r.opts.Bundle.Get()
	if err != nil {
		return nil, nil, err
	}
	rctx := &core.RecommendContext{UserID: userID, History: history}
	if err := r.resolveHistory(ctx, rctx); err != nil {
		return nil, nil, err
	}
	v, err := profile.Build(rctx.History, b.Index, b.Matrix, r.weighted(weighted))
	if err != nil {
		return nil, nil, err
	}
	rctx.SetProfile(v)
	return b, rctx, nil
}

// Explain 返回某篇新闻的词级解释。
func (r *Recommender) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, r.invalid(err)
	}
	b, rctx, err := r.buildProfile(ctx, req.UserID, req.History, req.Weighted)
	if err != nil {
		return nil, err
	}
	topK := req.TopK
	if topK == 0 {
		topK = r.opts.Recommend.DefaultExplainTopK()
	}

	resp := &ExplainResponse{
		NewsID:       req.NewsID,
		ProfileTerms: []explain.TermWeight{},
		ItemTerms:    []explain.TermWeight{},
	}
	item, ok, err := b.ItemVector(req.NewsID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return resp, nil
	}
	e := explain.Explain(rctx.Profile, item, b.Vocab, topK)
	resp.ProfileTerms = e.ProfileTerms
	resp.ItemTerms = e.ItemTerms
	resp.Available = rctx.Profile != nil && b.Vocab.Available()
	return resp, nil
}

// SimilarHistory 返回与画像最相似的历史阅读。
func (r *Recommender) SimilarHistory(ctx context.Context, req SimilarHistoryRequest) (*SimilarHistoryResponse, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, r.invalid(err)
	}
	b, rctx, err := r.buildProfile(ctx, req.UserID, req.History, req.Weighted)
	if err != nil {
		return nil, err
	}
	topK := req.TopK
	if topK == 0 {
		topK = r.opts.Recommend.DefaultHistoryTopK()
	}
	matches, err := profile.MostSimilarHistory(rctx.Profile, rctx.History, b.Index, b.Matrix, topK)
	if err != nil {
		return nil, err
	}
	return &SimilarHistoryResponse{
		ProfileAbsent: rctx.Profile == nil,
		Items:         r.toMatches(ctx, matches),
	}, nil
}

// Search 按标题关键词检索新闻（用于挑选阅读历史）。
func (r *Recommender) Search(ctx context.Context, keyword string, limit int) ([]corpus.Document, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", core.ErrInvalidRequest)
	}
	cat, err := r.catalog()
	if err != nil {
		return nil, err
	}
	return cat.Search(ctx, keyword, limit)
}

// Document 返回单篇新闻的元数据。
func (r *Recommender) Document(ctx context.Context, id string) (corpus.Document, bool, error) {
	cat, err := r.catalog()
	if err != nil {
		return corpus.Document{}, false, err
	}
	return cat.Document(ctx, id)
}

// Evaluation 返回离线评估表与当前生效的阈值。
func (r *Recommender) Evaluation() (*EvaluationResponse, error) {
	b, err := r.opts.Bundle.Get()
	if err != nil {
		return nil, err
	}
	rows := b.Evaluation.Rows
	if rows == nil {
		rows = []corpus.EvaluationRow{}
	}
	return &EvaluationResponse{Threshold: r.threshold(b), Rows: rows}, nil
}

// AppendHistory 追加阅读记录到历史存储。
func (r *Recommender) AppendHistory(ctx context.Context, userID string, newsIDs ...string) error {
	if r.opts.History == nil {
		return fmt.Errorf("%w: no history store configured", core.ErrInvalidRequest)
	}
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", core.ErrInvalidRequest)
	}
	return r.opts.History.AppendHistory(ctx, userID, newsIDs...)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case core.IsInvalidInput(err):
		return metrics.OutcomeInvalid
	case core.IsStructural(err):
		return metrics.OutcomeStructural
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
