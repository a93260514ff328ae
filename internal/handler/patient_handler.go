package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/karteflow/internal/model"
)

// DirectoryServiceInterface は患者ハンドラーが必要とするサービスインターフェース。
type DirectoryServiceInterface interface {
	// Search は氏名またはカルテ番号の部分一致で患者を検索する。
	// 空の検索語では全患者を返す。
	Search(term string) []*model.Patient
	// FindByID は患者IDで患者を取得する。見つからない場合はnil。
	FindByID(id string) *model.Patient
}

// PatientHandler は患者名簿のHTTPハンドラー。
type PatientHandler struct {
	service DirectoryServiceInterface
}

// NewPatientHandler はPatientHandlerを生成する。
func NewPatientHandler(service DirectoryServiceInterface) *PatientHandler {
	return &PatientHandler{service: service}
}

// patientResponse は患者情報のAPIレスポンス。
type patientResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DOB      string `json:"dob"`
	MRN      string `json:"mrn"`
	Address  string `json:"address"`
	Referrer string `json:"referrer"`
}

// List は患者一覧を返す。qパラメータで氏名・カルテ番号の部分一致検索を行う。
// GET /api/patients?q=xxx
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	patients := h.service.Search(term)

	resp := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		resp = append(resp, toPatientResponse(p))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toPatientResponse はmodel.PatientからAPIレスポンスに変換する。
func toPatientResponse(p *model.Patient) patientResponse {
	return patientResponse{
		ID:       p.ID,
		Name:     p.Name,
		DOB:      p.DOB,
		MRN:      p.MRN,
		Address:  p.Address,
		Referrer: p.Referrer,
	}
}
