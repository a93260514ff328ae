package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/karteflow/internal/calendar"
	"github.com/hitoshi/karteflow/internal/model"
)

// CalendarServiceInterface はスケジュールハンドラーが必要とするサービスインターフェース。
type CalendarServiceInterface interface {
	// AppointmentsOnDate は指定日の予約を時刻順に返す。
	AppointmentsOnDate(date string) []*model.Appointment
	// ResolvePatient は予約の患者を解決する。名簿にない場合はnil。
	ResolvePatient(a *model.Appointment) *model.Patient
}

// ScheduleHandler は予約カレンダーのHTTPハンドラー。
type ScheduleHandler struct {
	service CalendarServiceInterface
}

// NewScheduleHandler はScheduleHandlerを生成する。
func NewScheduleHandler(service CalendarServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// unresolvedPatientName は名簿で解決できない患者の表示名。
const unresolvedPatientName = "不明"

// appointmentResponse は予約情報のAPIレスポンス。
// 患者が名簿で解決できない場合、patient_nameは「不明」となり
// selectableがfalseになる。未解決の予約からは文書を作成できない。
type appointmentResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Selectable  bool   `json:"selectable"`
}

// scheduleResponse は日単位のスケジュールレスポンス。
type scheduleResponse struct {
	Date         string                `json:"date"`
	Appointments []appointmentResponse `json:"appointments"`
}

// Day は指定日の予約一覧を返す。dateパラメータ省略時は当日。
// GET /api/schedule?date=YYYY-MM-DD
func (h *ScheduleHandler) Day(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(calendar.DateLayout)
	}
	if _, err := time.Parse(calendar.DateLayout, date); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(date))
		return
	}

	appts := h.service.AppointmentsOnDate(date)

	resp := scheduleResponse{
		Date:         date,
		Appointments: make([]appointmentResponse, 0, len(appts)),
	}
	for _, a := range appts {
		entry := appointmentResponse{
			ID:          a.ID,
			Date:        a.Date,
			Time:        a.Time,
			PatientID:   a.PatientID,
			PatientName: unresolvedPatientName,
		}
		if p := h.service.ResolvePatient(a); p != nil {
			entry.PatientName = p.Name
			entry.Selectable = true
		}
		resp.Appointments = append(resp.Appointments, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// shiftResponse は日送りレスポンス。
type shiftResponse struct {
	Date string `json:"date"`
}

// Shift は基準日からdelta日進めた（または戻した）日付を返す。
// 月末・年末・うるう年はカレンダー規則に従って繰り上がる。
// GET /api/schedule/shift?date=YYYY-MM-DD&delta=N
func (h *ScheduleHandler) Shift(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(calendar.DateLayout)
	}

	delta := 0
	if deltaStr := r.URL.Query().Get("delta"); deltaStr != "" {
		var err error
		delta, err = strconv.Atoi(deltaStr)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "deltaは整数で指定してください。",
				Category: "validation",
				Action:   "例: delta=1（翌日）、delta=-1（前日）",
			})
			return
		}
	}

	shifted, err := calendar.AdvanceDay(date, delta)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shiftResponse{Date: shifted})
}
