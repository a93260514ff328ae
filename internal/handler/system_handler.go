package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/karteflow/internal/model"
)

// Refresher はスナップショット再読込のインターフェース。
// directory.Service、calendar.Service、workflow.Serviceが実装する。
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SystemHandler は再読込とヘルスチェックのHTTPハンドラー。
type SystemHandler struct {
	refreshers []Refresher
}

// NewSystemHandler はSystemHandlerを生成する。
func NewSystemHandler(refreshers ...Refresher) *SystemHandler {
	return &SystemHandler{refreshers: refreshers}
}

// Refresh は全サービスのスナップショットを再読込する。
// 一部の読み込みが失敗してもサービスは直前のスナップショットを保持して
// 継続するため、失敗を503で通知しつつ残りの再読込は実行する。
// POST /api/refresh
func (h *SystemHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var firstErr error
	for _, ref := range h.refreshers {
		if err := ref.Refresh(r.Context()); err != nil {
			slog.Warn("refresh failed", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		var apiErr *model.APIError
		if errors.As(firstErr, &apiErr) {
			writeAPIErrorResponse(w, http.StatusServiceUnavailable, apiErr)
			return
		}
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, model.NewPersistenceReadError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health はヘルスチェックに応答する。
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
