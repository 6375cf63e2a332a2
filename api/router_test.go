package api_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsrec/api"
	"github.com/rushteam/newsrec/config"
	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/corpus"
	"github.com/rushteam/newsrec/corpus/corpustest"
	"github.com/rushteam/newsrec/service"
)

func newHandler(t *testing.T, bundle *corpus.Shared) http.Handler {
	t.Helper()
	if bundle == nil {
		bundle = corpus.SharedOf(corpustest.Bundle(t))
	}
	svc, err := service.New(service.Options{
		Bundle:    bundle,
		Recommend: config.Default().Recommend,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return api.NewRouter(svc, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecommendEndpoint(t *testing.T) {
	h := newHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/v1/recommend", map[string]any{"history": []string{"N1"}, "top_n": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))

	var resp service.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "N5", resp.Items[0].NewsID)
	assert.Equal(t, "recommended", resp.Items[0].Label)
	assert.Equal(t, rec.Header().Get(api.RequestIDHeader), resp.RequestID)
}

func TestRecommendEndpoint_RequestIDPropagates(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/recommend", bytes.NewBufferString(`{"history":["N1"]}`))
	req.Header.Set(api.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(api.RequestIDHeader))
	var resp service.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.RequestID)
}

func TestRecommendEndpoint_BadRequest(t *testing.T) {
	h := newHandler(t, nil)

	for name, body := range map[string]any{
		"malformed json": `{"history": [`,
		"unknown field":  `{"histroy": ["N1"]}`,
		"no history":     map[string]any{},
		"bad threshold":  map[string]any{"history": []string{"N1"}, "threshold": 3},
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/recommend", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, core.ErrorCodeInvalidInput, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestRecommendEndpoint_BrokenCorpus(t *testing.T) {
	h := newHandler(t, corpus.NewShared(func() (*corpus.Bundle, error) {
		return nil, core.ErrMalformedMatrix
	}))

	rec := do(t, h, http.MethodPost, "/v1/recommend", map[string]any{"history": []string{"N1"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExplainEndpoint(t *testing.T) {
	h := newHandler(t, nil)
	rec := do(t, h, http.MethodPost, "/v1/explain", map[string]any{"history": []string{"N1", "N2"}, "news_id": "N5", "top_k": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp service.ExplainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	require.Len(t, resp.ProfileTerms, 1)
	assert.Equal(t, "football", resp.ProfileTerms[0].Term)
	require.Len(t, resp.ItemTerms, 1)
	assert.Equal(t, "election", resp.ItemTerms[0].Term)
}

func TestSimilarHistoryEndpoint(t *testing.T) {
	h := newHandler(t, nil)
	rec := do(t, h, http.MethodPost, "/v1/similar-history", map[string]any{"history": []string{"N1", "N2"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp service.SimilarHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "N2", resp.Items[0].NewsID)
}

func TestNewsEndpoints(t *testing.T) {
	h := newHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/news?q=market&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Items []corpus.Document `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Len(t, search.Items, 2)
	assert.Equal(t, "N3", search.Items[0].ID)

	rec = do(t, h, http.MethodGet, "/v1/news?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/news/N2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc corpus.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "sports", doc.Category)

	rec = do(t, h, http.MethodGet, "/v1/news/N404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluationAndHealth(t *testing.T) {
	h := newHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/evaluation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var eval service.EvaluationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, corpustest.Threshold, eval.Threshold)
	assert.Len(t, eval.Rows, 2)

	rec = do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
