// Package repository はデータ永続化のインターフェースを定義する。
//
// 永続化層はリモートのドキュメントデータベース（SurrealDB）であり、
// コアのワークフローからは外部コラボレーターとして扱う。
// いずれの呼び出しの失敗もプロセスに対して致命的ではなく、
// 呼び出し側がインメモリ状態との整合を取る。
package repository

import (
	"context"

	"github.com/hitoshi/karteflow/internal/model"
)

// DocumentRepository は臨床文書の永続化インターフェース。
// 文書は状態遷移のたびに保存され、コアから削除されることはない。
type DocumentRepository interface {
	// Create は文書を新規保存する。
	Create(ctx context.Context, doc *model.Document) error

	// Update は文書の本文と状態を上書き保存する。
	// バージョン確認は行わず、後勝ちで書き込む。
	Update(ctx context.Context, doc *model.Document) error

	// List は全文書をID昇順で返す。
	List(ctx context.Context) ([]*model.Document, error)
}

// PatientRepository は患者データの永続化インターフェース。
// 患者は外部で作成され、コアからは読み取り専用。
// Createはシード処理専用。
type PatientRepository interface {
	// List は全患者を登録順で返す。
	List(ctx context.Context) ([]*model.Patient, error)

	// Create は患者を登録する。シード処理からのみ使用する。
	Create(ctx context.Context, seq int, p *model.Patient) error
}

// AppointmentRepository は予約データの永続化インターフェース。
// 予約は外部で作成され、コアからは読み取り専用。
// Createはシード処理専用。
type AppointmentRepository interface {
	// List は全予約を登録順で返す。
	List(ctx context.Context) ([]*model.Appointment, error)

	// Create は予約を登録する。シード処理からのみ使用する。
	Create(ctx context.Context, seq int, a *model.Appointment) error
}
