package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/karteflow/internal/export"
	"github.com/hitoshi/karteflow/internal/middleware"
	"github.com/hitoshi/karteflow/internal/model"
)

// WorkflowServiceInterface は文書ハンドラーが必要とするサービスインターフェース。
type WorkflowServiceInterface interface {
	// Create は臨床医が新規文書を作成する。初期状態はpending_secretary。
	Create(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error)
	// CompleteOnCreate は作成と同時に完了状態の文書を登録する。
	CompleteOnCreate(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error)
	// Forward は秘書が文書を臨床医の確認待ちに進める。
	Forward(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error)
	// SendBack は臨床医が文書を秘書に差し戻す。
	SendBack(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error)
	// Complete は臨床医が文書を完了確認する。
	Complete(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error)
	// Export は完了文書の出力アーティファクトを生成する。状態は変更しない。
	Export(sess *model.Session, docID int64) ([]byte, error)
	// MyDocuments はセッションの臨床医が作成した文書を返す。
	MyDocuments(sess *model.Session) ([]*model.Document, error)
	// ListAll は全文書を返す（秘書向け）。
	ListAll(sess *model.Session) ([]*model.Document, error)
}

// DocumentHandler は文書ワークフローのHTTPハンドラー。
type DocumentHandler struct {
	service WorkflowServiceInterface
}

// NewDocumentHandler はDocumentHandlerを生成する。
func NewDocumentHandler(service WorkflowServiceInterface) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// createDocumentRequest は文書作成リクエストのボディ。
type createDocumentRequest struct {
	PatientID string `json:"patient_id"`
	Content   string `json:"content"`
}

// transitionRequest は状態遷移リクエストのボディ。
// 遷移と同時に本文の編集内容を保存する。
type transitionRequest struct {
	Content string `json:"content"`
}

// documentResponse は文書情報のAPIレスポンス。
// row_toneは一覧表示の行の色分け（positive/caution/alert/neutral）。
type documentResponse struct {
	ID            int64  `json:"id"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	RowTone       string `json:"row_tone"`
	ClinicianName string `json:"clinician_name"`
}

// Create は文書を作成する。
// POST /api/documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.createWith(w, r, h.service.Create)
}

// CompleteOnCreate は作成と同時に完了状態の文書を登録する。
// POST /api/documents/complete
func (h *DocumentHandler) CompleteOnCreate(w http.ResponseWriter, r *http.Request) {
	h.createWith(w, r, h.service.CompleteOnCreate)
}

// createWith は作成系エンドポイントの共通処理。
func (h *DocumentHandler) createWith(
	w http.ResponseWriter,
	r *http.Request,
	create func(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error),
) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.PatientID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "patient_idが空です。",
			Category: "validation",
			Action:   "患者を選択してから作成してください。",
		})
		return
	}

	doc, err := create(r.Context(), sess, req.PatientID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// Mine はセッションの臨床医が作成した文書の一覧を返す。
// GET /api/documents/mine
func (h *DocumentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	docs, err := h.service.MyDocuments(sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDocumentList(w, docs)
}

// List は全文書の一覧を返す（秘書向け）。
// GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	docs, err := h.service.ListAll(sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDocumentList(w, docs)
}

// Forward は文書を臨床医の確認待ちに進める。
// POST /api/documents/{id}/forward
func (h *DocumentHandler) Forward(w http.ResponseWriter, r *http.Request) {
	h.transitionWith(w, r, h.service.Forward)
}

// SendBack は文書を秘書に差し戻す。
// POST /api/documents/{id}/sendback
func (h *DocumentHandler) SendBack(w http.ResponseWriter, r *http.Request) {
	h.transitionWith(w, r, h.service.SendBack)
}

// Complete は文書を完了確認する。
// POST /api/documents/{id}/complete
func (h *DocumentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transitionWith(w, r, h.service.Complete)
}

// transitionWith は遷移系エンドポイントの共通処理。
func (h *DocumentHandler) transitionWith(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error),
) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	docID, err := parseDocumentID(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "文書IDの形式が不正です。",
			Category: "validation",
			Action:   "文書一覧から操作してください。",
		})
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	doc, err := transition(r.Context(), sess, docID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// Export は文書の出力アーティファクトを返す。
// POST /api/documents/{id}/export
func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	docID, err := parseDocumentID(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "文書IDの形式が不正です。",
			Category: "validation",
			Action:   "文書一覧から操作してください。",
		})
		return
	}

	artifact, err := h.service.Export(sess, docID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(docID)))
	w.Write(artifact)
}

// --- ヘルパー関数 ---

// parseDocumentID はURLパスから文書IDを取得する。
func parseDocumentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// toDocumentResponse はmodel.DocumentからAPIレスポンスに変換する。
func toDocumentResponse(doc *model.Document) documentResponse {
	return documentResponse{
		ID:            doc.ID,
		PatientID:     doc.Patient.ID,
		PatientName:   doc.Patient.Name,
		Content:       doc.Content,
		Status:        string(doc.Status),
		RowTone:       string(model.ToneForStatus(doc.Status)),
		ClinicianName: doc.Clinician.Name,
	}
}

// writeDocumentList は文書一覧レスポンスを書き込む。
func writeDocumentList(w http.ResponseWriter, docs []*model.Document) {
	resp := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toDocumentResponse(doc))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
