// Package model はドメインモデルを定義する。
package model

// DocumentStatus は文書のワークフロー状態を表す。
type DocumentStatus string

const (
	// StatusPendingSecretary は秘書の編集待ち状態。
	StatusPendingSecretary DocumentStatus = "pending_secretary"
	// StatusPendingClinician は臨床医のレビュー待ち状態。
	StatusPendingClinician DocumentStatus = "pending_clinician"
	// StatusCompleted は完了状態。
	StatusCompleted DocumentStatus = "completed"
)

// IsValid は既知のワークフロー状態かどうかを返す。
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPendingSecretary, StatusPendingClinician, StatusCompleted:
		return true
	}
	return false
}

// RowTone は文書一覧の行の強調表示トーンを表す。
// statusのみから導出される表示用の投影値。
type RowTone string

const (
	// TonePositive は完了文書の行トーン。
	TonePositive RowTone = "positive"
	// ToneCaution は秘書編集待ち文書の行トーン。
	ToneCaution RowTone = "caution"
	// ToneAlert は臨床医レビュー待ち文書の行トーン。
	ToneAlert RowTone = "alert"
	// ToneNeutral は未知の状態の行トーン。通常は発生しない。
	ToneNeutral RowTone = "neutral"
)

// ToneForStatus は文書状態から行トーンへの固定マッピングを返す。
func ToneForStatus(s DocumentStatus) RowTone {
	switch s {
	case StatusCompleted:
		return TonePositive
	case StatusPendingSecretary:
		return ToneCaution
	case StatusPendingClinician:
		return ToneAlert
	default:
		return ToneNeutral
	}
}

// Actor は文書を作成した臨床医のセッション上の識別情報を表す。
type Actor struct {
	Name string
	Role Role
}

// Document は臨床文書を表す。
// Patientは作成時点のスナップショットを値で保持する。作成後に
// 患者がディレクトリから削除されても文書は取り下げられない。
// Contentはリッチテキスト（HTML）のペイロードで、状態機械からは
// 不透明な文字列として扱う。
type Document struct {
	ID        int64
	Patient   Patient
	Content   string
	Status    DocumentStatus
	Clinician Actor
}
