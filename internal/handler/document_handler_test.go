package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/karteflow/internal/middleware"
	"github.com/hitoshi/karteflow/internal/model"
)

// --- モック定義 ---

type mockWorkflowService struct {
	createFn           func(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error)
	completeOnCreateFn func(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error)
	forwardFn          func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error)
	sendBackFn         func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error)
	completeFn         func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error)
	exportFn           func(sess *model.Session, docID int64) ([]byte, error)
	myDocumentsFn      func(sess *model.Session) ([]*model.Document, error)
	listAllFn          func(sess *model.Session) ([]*model.Document, error)
}

func (m *mockWorkflowService) Create(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error) {
	if m.createFn != nil {
		return m.createFn(ctx, sess, patientID, content)
	}
	return nil, nil
}
func (m *mockWorkflowService) CompleteOnCreate(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error) {
	if m.completeOnCreateFn != nil {
		return m.completeOnCreateFn(ctx, sess, patientID, content)
	}
	return nil, nil
}
func (m *mockWorkflowService) Forward(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
	if m.forwardFn != nil {
		return m.forwardFn(ctx, sess, docID, content)
	}
	return nil, nil
}
func (m *mockWorkflowService) SendBack(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
	if m.sendBackFn != nil {
		return m.sendBackFn(ctx, sess, docID, content)
	}
	return nil, nil
}
func (m *mockWorkflowService) Complete(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, sess, docID, content)
	}
	return nil, nil
}
func (m *mockWorkflowService) Export(sess *model.Session, docID int64) ([]byte, error) {
	if m.exportFn != nil {
		return m.exportFn(sess, docID)
	}
	return nil, nil
}
func (m *mockWorkflowService) MyDocuments(sess *model.Session) ([]*model.Document, error) {
	if m.myDocumentsFn != nil {
		return m.myDocumentsFn(sess)
	}
	return nil, nil
}
func (m *mockWorkflowService) ListAll(sess *model.Session) ([]*model.Document, error) {
	if m.listAllFn != nil {
		return m.listAllFn(sess)
	}
	return nil, nil
}

// withSession はリクエストにセッションを注入する。
func withSession(req *http.Request, role model.Role, name string) *http.Request {
	sess := &model.Session{ID: "s1", Role: role, ActorName: name}
	return req.WithContext(middleware.ContextWithSession(req.Context(), sess))
}

// withDocID はchiのURLパラメータに文書IDを設定する。
func withDocID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleDocument(status model.DocumentStatus) *model.Document {
	return &model.Document{
		ID:      1700000000000,
		Content: "<p>所見</p>",
		Status:  status,
		Patient: model.Patient{ID: "p1", Name: "Jane Doe"},
		Clinician: model.Actor{
			Name: "dr-tanaka",
			Role: model.RoleClinician,
		},
	}
}

// --- テスト ---

func TestDocumentHandler_Create_Returns201(t *testing.T) {
	svc := &mockWorkflowService{
		createFn: func(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error) {
			return sampleDocument(model.StatusPendingSecretary), nil
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents",
		strings.NewReader(`{"patient_id":"p1","content":"<p>所見</p>"}`))
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "pending_secretary" {
		t.Errorf("status = %q, want pending_secretary", body.Status)
	}
	if body.RowTone != "caution" {
		t.Errorf("row_tone = %q, want caution", body.RowTone)
	}
	if body.PatientName != "Jane Doe" {
		t.Errorf("patient_name = %q, want Jane Doe", body.PatientName)
	}
}

func TestDocumentHandler_Create_MissingPatientID_Returns400(t *testing.T) {
	h := NewDocumentHandler(&mockWorkflowService{})

	req := httptest.NewRequest(http.MethodPost, "/api/documents",
		strings.NewReader(`{"content":"x"}`))
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestDocumentHandler_Create_NoSession_Returns401(t *testing.T) {
	h := NewDocumentHandler(&mockWorkflowService{})

	req := httptest.NewRequest(http.MethodPost, "/api/documents",
		strings.NewReader(`{"patient_id":"p1"}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestDocumentHandler_CompleteOnCreate_ReturnsCompletedDocument(t *testing.T) {
	svc := &mockWorkflowService{
		completeOnCreateFn: func(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error) {
			return sampleDocument(model.StatusCompleted), nil
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/complete",
		strings.NewReader(`{"patient_id":"p1","content":"done"}`))
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	w := httptest.NewRecorder()

	h.CompleteOnCreate(w, req)

	var body documentResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "completed" {
		t.Errorf("status = %q, want completed", body.Status)
	}
	if body.RowTone != "positive" {
		t.Errorf("row_tone = %q, want positive", body.RowTone)
	}
}

func TestDocumentHandler_Forward_RoleDenied_Returns403(t *testing.T) {
	svc := &mockWorkflowService{
		forwardFn: func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
			return nil, model.NewRoleDeniedError(sess.Role)
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/1700000000000/forward",
		strings.NewReader(`{"content":"x"}`))
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	req = withDocID(req, "1700000000000")
	w := httptest.NewRecorder()

	h.Forward(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestDocumentHandler_Complete_InvalidTransition_Returns409(t *testing.T) {
	svc := &mockWorkflowService{
		completeFn: func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
			return nil, model.NewInvalidTransitionError(model.StatusCompleted, "complete")
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/1700000000000/complete",
		strings.NewReader(`{"content":"x"}`))
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	req = withDocID(req, "1700000000000")
	w := httptest.NewRecorder()

	h.Complete(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}
}

func TestDocumentHandler_SendBack_NotFound_Returns404(t *testing.T) {
	svc := &mockWorkflowService{
		sendBackFn: func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
			return nil, model.NewDocumentNotFoundError(docID)
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/999/sendback",
		strings.NewReader(`{"content":"x"}`))
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	req = withDocID(req, "999")
	w := httptest.NewRecorder()

	h.SendBack(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestDocumentHandler_Forward_WriteFailure_Returns502(t *testing.T) {
	svc := &mockWorkflowService{
		forwardFn: func(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
			// ローカル状態は遷移済みだが保存に失敗した場合
			return sampleDocument(model.StatusPendingClinician), model.NewPersistenceWriteError()
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/1700000000000/forward",
		strings.NewReader(`{"content":"x"}`))
	req = withSession(req, model.RoleSecretary, "sec-suzuki")
	req = withDocID(req, "1700000000000")
	w := httptest.NewRecorder()

	h.Forward(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}

	var body apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodePersistenceWrite {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodePersistenceWrite)
	}
}

func TestDocumentHandler_Mine_ReturnsOwnDocuments(t *testing.T) {
	svc := &mockWorkflowService{
		myDocumentsFn: func(sess *model.Session) ([]*model.Document, error) {
			return []*model.Document{sampleDocument(model.StatusPendingClinician)}, nil
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/mine", nil)
	req = withSession(req, model.RoleClinician, "dr-tanaka")
	w := httptest.NewRecorder()

	h.Mine(w, req)

	var body []documentResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("len(body) = %d, want 1", len(body))
	}
	if body[0].RowTone != "alert" {
		t.Errorf("row_tone = %q, want alert", body[0].RowTone)
	}
}

func TestDocumentHandler_List_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	svc := &mockWorkflowService{
		listAllFn: func(sess *model.Session) ([]*model.Document, error) {
			return nil, nil
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req = withSession(req, model.RoleSecretary, "sec-suzuki")
	w := httptest.NewRecorder()

	h.List(w, req)

	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestDocumentHandler_Export_ReturnsHTMLAttachment(t *testing.T) {
	svc := &mockWorkflowService{
		exportFn: func(sess *model.Session, docID int64) ([]byte, error) {
			return []byte("<!DOCTYPE html><html></html>"), nil
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/1700000000000/export", nil)
	req = withSession(req, model.RoleSecretary, "sec-suzuki")
	req = withDocID(req, "1700000000000")
	w := httptest.NewRecorder()

	h.Export(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "document_1700000000000.html") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestDocumentHandler_Export_Failure_Returns500(t *testing.T) {
	svc := &mockWorkflowService{
		exportFn: func(sess *model.Session, docID int64) ([]byte, error) {
			return nil, model.NewExportFailedError()
		},
	}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/1700000000000/export", nil)
	req = withSession(req, model.RoleSecretary, "sec-suzuki")
	req = withDocID(req, "1700000000000")
	w := httptest.NewRecorder()

	h.Export(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

func TestDocumentHandler_Transition_MalformedID_Returns400(t *testing.T) {
	h := NewDocumentHandler(&mockWorkflowService{})

	req := httptest.NewRequest(http.MethodPost, "/api/documents/abc/forward",
		strings.NewReader(`{"content":"x"}`))
	req = withSession(req, model.RoleSecretary, "sec-suzuki")
	req = withDocID(req, "abc")
	w := httptest.NewRecorder()

	h.Forward(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}
