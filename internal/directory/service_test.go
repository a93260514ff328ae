package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/karteflow/internal/model"
)

// --- モック ---

type mockPatientRepo struct {
	listFn func(ctx context.Context) ([]*model.Patient, error)
}

func (m *mockPatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	return m.listFn(ctx)
}
func (m *mockPatientRepo) Create(ctx context.Context, seq int, p *model.Patient) error {
	return nil
}

func testPatients() []*model.Patient {
	return []*model.Patient{
		{ID: "p1", Name: "Jane Doe", MRN: "001"},
		{ID: "p2", Name: "John Roe", MRN: "002"},
	}
}

func refreshedService(t *testing.T, patients []*model.Patient) *Service {
	t.Helper()
	svc := NewService(&mockPatientRepo{
		listFn: func(ctx context.Context) ([]*model.Patient, error) {
			return patients, nil
		},
	})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	return svc
}

// --- テスト ---

// TestService_Search_EmptyTerm は空の検索語でディレクトリ全体が
// そのままの順序で返ることを検証する。
func TestService_Search_EmptyTerm(t *testing.T) {
	svc := refreshedService(t, testPatients())

	result := svc.Search("")
	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}
	if result[0].ID != "p1" || result[1].ID != "p2" {
		t.Errorf("ディレクトリ順が保持されていない: [%s, %s]", result[0].ID, result[1].ID)
	}
}

// TestService_Search_NameMatch は氏名の大文字小文字を無視した
// 部分一致を検証する。
func TestService_Search_NameMatch(t *testing.T) {
	svc := refreshedService(t, testPatients())

	result := svc.Search("jo")
	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(result))
	}
	if result[0].Name != "John Roe" {
		t.Errorf("result[0].Name = %q, want %q", result[0].Name, "John Roe")
	}
}

// TestService_Search_MRNMatch はMRNの部分一致を検証する。
func TestService_Search_MRNMatch(t *testing.T) {
	svc := refreshedService(t, testPatients())

	// "00" は両方のMRNにマッチする
	result := svc.Search("00")
	if len(result) != 2 {
		t.Fatalf(`Search("00"): len = %d, want 2`, len(result))
	}

	// "001" はJane Doeのみ
	result = svc.Search("001")
	if len(result) != 1 {
		t.Fatalf(`Search("001"): len = %d, want 1`, len(result))
	}
	if result[0].Name != "Jane Doe" {
		t.Errorf("result[0].Name = %q, want %q", result[0].Name, "Jane Doe")
	}
}

// TestService_Search_NoMatch はマッチなしが空スライスとして
// 返ることを検証する。エラーではない。
func TestService_Search_NoMatch(t *testing.T) {
	svc := refreshedService(t, testPatients())

	result := svc.Search("zzz")
	if len(result) != 0 {
		t.Errorf("len(result) = %d, want 0", len(result))
	}
}

// TestService_FindByID は患者参照の解決を検証する。
// 見つからない場合はnilであり、エラー扱いしない。
func TestService_FindByID(t *testing.T) {
	svc := refreshedService(t, testPatients())

	if p := svc.FindByID("p2"); p == nil || p.Name != "John Roe" {
		t.Errorf("FindByID(p2) = %+v, want John Roe", p)
	}
	if p := svc.FindByID("missing"); p != nil {
		t.Errorf("FindByID(missing) = %+v, want nil", p)
	}
}

// TestService_Refresh_Failure は読込失敗時に直前のスナップショットが
// 保持されることを検証する。
func TestService_Refresh_Failure(t *testing.T) {
	calls := 0
	repo := &mockPatientRepo{
		listFn: func(ctx context.Context) ([]*model.Patient, error) {
			calls++
			if calls == 1 {
				return testPatients(), nil
			}
			return nil, errors.New("connection reset")
		},
	}

	svc := NewService(repo)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("initial Refresh failed: %v", err)
	}

	err := svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error on second Refresh, got nil")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePersistenceRead {
		t.Errorf("err = %v, want APIError with code %s", err, model.ErrCodePersistenceRead)
	}

	// 直前のスナップショットが維持されている
	if len(svc.Search("")) != 2 {
		t.Error("読込失敗後にスナップショットが失われた")
	}
}
