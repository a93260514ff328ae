package repository

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/hitoshi/karteflow/internal/model"
)

const documentTable = "documents"

// documentRecord はdocumentsコレクションのレコード表現。
// 患者情報は作成時点のスナップショットを埋め込みで保持する。
type documentRecord struct {
	ID            models.RecordID `json:"id"`
	DocID         int64           `json:"doc_id"`
	Content       string          `json:"content"`
	Status        string          `json:"status"`
	ClinicianName string          `json:"clinician_name"`
	ClinicianRole string          `json:"clinician_role"`
	Patient       patientFields   `json:"patient"`
}

// patientFields は文書に埋め込む患者スナップショット。
type patientFields struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DOB      string `json:"dob"`
	MRN      string `json:"mrn"`
	Address  string `json:"address"`
	Referrer string `json:"referrer"`
}

// SurrealDocumentRepo はDocumentRepositoryのSurrealDB実装。
type SurrealDocumentRepo struct {
	db *surrealdb.DB
}

// NewSurrealDocumentRepo はSurrealDocumentRepoを生成する。
func NewSurrealDocumentRepo(db *surrealdb.DB) *SurrealDocumentRepo {
	return &SurrealDocumentRepo{db: db}
}

// Create は文書を新規保存する。
func (r *SurrealDocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	rec := toDocumentRecord(doc)
	if _, err := surrealdb.Create[documentRecord](ctx, r.db, documentTable, rec); err != nil {
		return fmt.Errorf("failed to create document record: %w", err)
	}
	return nil
}

// Update は文書の本文と状態を上書き保存する。後勝ち。
func (r *SurrealDocumentRepo) Update(ctx context.Context, doc *model.Document) error {
	rec := toDocumentRecord(doc)
	rid := models.NewRecordID(documentTable, doc.ID)
	if _, err := surrealdb.Update[documentRecord](ctx, r.db, rid, rec); err != nil {
		return fmt.Errorf("failed to update document record: %w", err)
	}
	return nil
}

// List は全文書をID昇順で返す。
func (r *SurrealDocumentRepo) List(ctx context.Context) ([]*model.Document, error) {
	query := "SELECT * FROM type::table($table) ORDER BY doc_id ASC"
	params := map[string]any{"table": documentTable}

	result, err := surrealdb.Query[[]documentRecord](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var recs []documentRecord
	if result != nil && len(*result) > 0 {
		recs = (*result)[0].Result
	}

	docs := make([]*model.Document, len(recs))
	for i, rec := range recs {
		docs[i] = fromDocumentRecord(rec)
	}
	return docs, nil
}

func toDocumentRecord(doc *model.Document) documentRecord {
	return documentRecord{
		ID:            models.NewRecordID(documentTable, doc.ID),
		DocID:         doc.ID,
		Content:       doc.Content,
		Status:        string(doc.Status),
		ClinicianName: doc.Clinician.Name,
		ClinicianRole: string(doc.Clinician.Role),
		Patient: patientFields{
			ID:       doc.Patient.ID,
			Name:     doc.Patient.Name,
			DOB:      doc.Patient.DOB,
			MRN:      doc.Patient.MRN,
			Address:  doc.Patient.Address,
			Referrer: doc.Patient.Referrer,
		},
	}
}

func fromDocumentRecord(rec documentRecord) *model.Document {
	return &model.Document{
		ID:      rec.DocID,
		Content: rec.Content,
		Status:  model.DocumentStatus(rec.Status),
		Clinician: model.Actor{
			Name: rec.ClinicianName,
			Role: model.Role(rec.ClinicianRole),
		},
		Patient: model.Patient{
			ID:       rec.Patient.ID,
			Name:     rec.Patient.Name,
			DOB:      rec.Patient.DOB,
			MRN:      rec.Patient.MRN,
			Address:  rec.Patient.Address,
			Referrer: rec.Patient.Referrer,
		},
	}
}
