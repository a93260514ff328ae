// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, workflow, persistence, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRole         = "INVALID_ROLE"
	ErrCodeRoleDenied          = "ROLE_DENIED"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeDocumentNotFound    = "DOCUMENT_NOT_FOUND"
	ErrCodePatientNotFound     = "PATIENT_NOT_FOUND"
	ErrCodeInvalidDate         = "INVALID_DATE"
	ErrCodePersistenceRead     = "PERSISTENCE_READ_FAILURE"
	ErrCodePersistenceWrite    = "PERSISTENCE_WRITE_FAILURE"
	ErrCodeExportFailed        = "EXPORT_FAILED"
	ErrCodeAppointmentNotFound = "APPOINTMENT_NOT_FOUND"
)

// NewInvalidRoleError は未知のロールが指定された場合のエラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効なロールです: %s", role),
		Category: "auth",
		Action:   "clinician または secretary を指定してください。",
	}
}

// NewRoleDeniedError は現在のロールでは許可されない操作のエラーを生成する。
func NewRoleDeniedError(role Role) *APIError {
	return &APIError{
		Code:     ErrCodeRoleDenied,
		Message:  fmt.Sprintf("現在のロール（%s）ではこの操作は実行できません。", role),
		Category: "workflow",
		Action:   "対応するロールでログインし直してください。",
	}
}

// NewInvalidTransitionError は現在の文書状態では許可されない遷移のエラーを生成する。
func NewInvalidTransitionError(from DocumentStatus, action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("現在の状態（%s）では %s は実行できません。", from, action),
		Category: "workflow",
		Action:   "文書一覧を更新して最新の状態を確認してください。",
	}
}

// NewDocumentNotFoundError は文書が見つからない場合のエラーを生成する。
func NewDocumentNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeDocumentNotFound,
		Message:  fmt.Sprintf("指定された文書が見つかりません: %d", id),
		Category: "workflow",
		Action:   "文書IDを確認してください。",
	}
}

// NewPatientNotFoundError は患者が見つからない場合のエラーを生成する。
func NewPatientNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodePatientNotFound,
		Message:  fmt.Sprintf("指定された患者が見つかりません: %s", id),
		Category: "workflow",
		Action:   "患者一覧を更新してから再度選択してください。",
	}
}

// NewAppointmentNotFoundError は予約が見つからない場合のエラーを生成する。
func NewAppointmentNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeAppointmentNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", id),
		Category: "workflow",
		Action:   "スケジュールを更新してから再度選択してください。",
	}
}

// NewInvalidDateError は日付形式が不正な場合のエラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付形式です: %s", date),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewPersistenceReadError は一覧取得クエリの失敗エラーを生成する。
// 呼び出し側は直前のスナップショットを保持したまま継続する。
func NewPersistenceReadError() *APIError {
	return &APIError{
		Code:     ErrCodePersistenceRead,
		Message:  "データベースからの読み込みに失敗しました。表示内容は最後に取得した状態のままです。",
		Category: "persistence",
		Action:   "しばらく待ってから再度更新してください。",
	}
}

// NewPersistenceWriteError は作成・更新の失敗エラーを生成する。
// ローカルの状態は巻き戻さず、自動リトライも行わない。
func NewPersistenceWriteError() *APIError {
	return &APIError{
		Code:     ErrCodePersistenceWrite,
		Message:  "データベースへの保存に失敗しました。画面上の変更は保持されていますが、まだ保存されていません。",
		Category: "persistence",
		Action:   "通信状態を確認し、再度操作してください。",
	}
}

// NewExportFailedError は出力アーティファクト生成の失敗エラーを生成する。
// 文書の状態には影響しない。
func NewExportFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeExportFailed,
		Message:  "文書の出力に失敗しました。文書の状態は変更されていません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
