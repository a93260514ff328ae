package repository

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/hitoshi/karteflow/internal/model"
)

const patientTable = "patients"

// patientRecord はpatientsコレクションのレコード表現。
// seqは登録順を保持するための連番。ディレクトリの自然順は
// この連番で再現する。
type patientRecord struct {
	ID       models.RecordID `json:"id"`
	Seq      int             `json:"seq"`
	Name     string          `json:"name"`
	DOB      string          `json:"dob"`
	MRN      string          `json:"mrn"`
	Address  string          `json:"address"`
	Referrer string          `json:"referrer"`
}

// SurrealPatientRepo はPatientRepositoryのSurrealDB実装。
type SurrealPatientRepo struct {
	db *surrealdb.DB
}

// NewSurrealPatientRepo はSurrealPatientRepoを生成する。
func NewSurrealPatientRepo(db *surrealdb.DB) *SurrealPatientRepo {
	return &SurrealPatientRepo{db: db}
}

// List は全患者を登録順で返す。
func (r *SurrealPatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	query := "SELECT * FROM type::table($table) ORDER BY seq ASC"
	params := map[string]any{"table": patientTable}

	result, err := surrealdb.Query[[]patientRecord](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	var recs []patientRecord
	if result != nil && len(*result) > 0 {
		recs = (*result)[0].Result
	}

	patients := make([]*model.Patient, len(recs))
	for i, rec := range recs {
		patients[i] = &model.Patient{
			ID:       recordIDString(rec.ID),
			Name:     rec.Name,
			DOB:      rec.DOB,
			MRN:      rec.MRN,
			Address:  rec.Address,
			Referrer: rec.Referrer,
		}
	}
	return patients, nil
}

// Create は患者を登録する。シード処理からのみ使用する。
func (r *SurrealPatientRepo) Create(ctx context.Context, seq int, p *model.Patient) error {
	rec := patientRecord{
		ID:       models.NewRecordID(patientTable, p.ID),
		Seq:      seq,
		Name:     p.Name,
		DOB:      p.DOB,
		MRN:      p.MRN,
		Address:  p.Address,
		Referrer: p.Referrer,
	}
	if _, err := surrealdb.Create[patientRecord](ctx, r.db, patientTable, rec); err != nil {
		return fmt.Errorf("failed to create patient record: %w", err)
	}
	return nil
}

// recordIDString はRecordIDのID部分を文字列として返す。
func recordIDString(rid models.RecordID) string {
	return fmt.Sprintf("%v", rid.ID)
}
