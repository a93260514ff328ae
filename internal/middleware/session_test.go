package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/karteflow/internal/model"
)

// --- モック定義 ---

type mockSessionFinder struct {
	getFn func(sessionID string) *model.Session
}

func (m *mockSessionFinder) Get(sessionID string) *model.Session {
	if m.getFn != nil {
		return m.getFn(sessionID)
	}
	return nil
}

// --- テスト ---

func TestSessionMiddleware_ValidSession_InjectsSession(t *testing.T) {
	finder := &mockSessionFinder{
		getFn: func(sessionID string) *model.Session {
			if sessionID == "valid-session-id" {
				return &model.Session{
					ID:        "valid-session-id",
					Role:      model.RoleClinician,
					ActorName: "dr-tanaka",
				}
			}
			return nil
		},
	}

	mw := NewSessionMiddleware(finder)

	var captured *model.Session
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := SessionFromContext(r.Context())
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		captured = sess
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session-id"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if captured == nil || captured.Role != model.RoleClinician {
		t.Errorf("session = %+v, want clinician session", captured)
	}
}

func TestSessionMiddleware_NoSessionCookie_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(&mockSessionFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_UnknownSession_Returns401(t *testing.T) {
	// ログアウト済みや未知のIDにはnilを返すマネージャの動作
	mw := NewSessionMiddleware(&mockSessionFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "logged-out-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestSessionFromContext_NoValue_ReturnsError(t *testing.T) {
	ctx := context.Background()
	_, err := SessionFromContext(ctx)
	if err == nil {
		t.Error("expected error for missing session in context")
	}
}

func TestSessionFromContext_ValidValue_ReturnsSession(t *testing.T) {
	sess := &model.Session{ID: "s1", Role: model.RoleSecretary, ActorName: "sec-suzuki"}
	ctx := ContextWithSession(context.Background(), sess)

	got, err := SessionFromContext(ctx)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got != sess {
		t.Errorf("session = %+v, want %+v", got, sess)
	}
}
