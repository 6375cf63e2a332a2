package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/logging"
	"github.com/rushteam/newsrec/service"
)

const maxBodyBytes = 1 << 20

// ErrorResponse 是错误响应体。
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 把领域错误映射为 HTTP 状态码：输入错误 400，不存在 404，结构性错误 500。
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := ""
	if de := core.GetDomainError(err); de != nil {
		code = de.Code
	}
	switch {
	case core.IsInvalidInput(err):
		status = http.StatusBadRequest
	case core.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		code = "TIMEOUT"
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: logging.RequestID(r.Context()),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "invalid json body: "+err.Error())
	}
	return nil
}

// Health 在语料与链路可用时返回 200，否则 503。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req service.ExplainRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.svc.Explain(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SimilarHistory(w http.ResponseWriter, r *http.Request) {
	var req service.SimilarHistoryRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.svc.SimilarHistory(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchNews 按标题关键词检索：GET /v1/news?q=election&limit=20
func (h *Handler) SearchNews(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, r, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	docs, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": docs})
}

func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok, err := h.svc.Document(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeError(w, r, core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound, "news "+id+" not found"))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Evaluation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Evaluation()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
