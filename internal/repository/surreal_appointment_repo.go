package repository

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/hitoshi/karteflow/internal/model"
)

const appointmentTable = "appointments"

// appointmentRecord はappointmentsコレクションのレコード表現。
// patient_idは患者ディレクトリ上の参照であり、参照先が存在しない
// ことは許容される（表示上 "Unknown" として扱う）。
type appointmentRecord struct {
	ID        models.RecordID `json:"id"`
	Seq       int             `json:"seq"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	PatientID string          `json:"patient_id"`
}

// SurrealAppointmentRepo はAppointmentRepositoryのSurrealDB実装。
type SurrealAppointmentRepo struct {
	db *surrealdb.DB
}

// NewSurrealAppointmentRepo はSurrealAppointmentRepoを生成する。
func NewSurrealAppointmentRepo(db *surrealdb.DB) *SurrealAppointmentRepo {
	return &SurrealAppointmentRepo{db: db}
}

// List は全予約を登録順で返す。
func (r *SurrealAppointmentRepo) List(ctx context.Context) ([]*model.Appointment, error) {
	query := "SELECT * FROM type::table($table) ORDER BY seq ASC"
	params := map[string]any{"table": appointmentTable}

	result, err := surrealdb.Query[[]appointmentRecord](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	var recs []appointmentRecord
	if result != nil && len(*result) > 0 {
		recs = (*result)[0].Result
	}

	appts := make([]*model.Appointment, len(recs))
	for i, rec := range recs {
		appts[i] = &model.Appointment{
			ID:        recordIDString(rec.ID),
			Date:      rec.Date,
			Time:      rec.Time,
			PatientID: rec.PatientID,
		}
	}
	return appts, nil
}

// Create は予約を登録する。シード処理からのみ使用する。
func (r *SurrealAppointmentRepo) Create(ctx context.Context, seq int, a *model.Appointment) error {
	rec := appointmentRecord{
		ID:        models.NewRecordID(appointmentTable, a.ID),
		Seq:       seq,
		Date:      a.Date,
		Time:      a.Time,
		PatientID: a.PatientID,
	}
	if _, err := surrealdb.Create[appointmentRecord](ctx, r.db, appointmentTable, rec); err != nil {
		return fmt.Errorf("failed to create appointment record: %w", err)
	}
	return nil
}
