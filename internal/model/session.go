// Package model はドメインモデルを定義する。
package model

// Role はログインセッションのロールを表す。
// ロールはラベルであり、認可のセキュリティ境界ではない。
// サーバー側の検証は将来の拡張とし、現状はUI向けの
// アクション出し分けのためにのみ使用する。
type Role string

const (
	// RoleClinician は臨床医ロール。
	RoleClinician Role = "clinician"
	// RoleSecretary は秘書ロール。
	RoleSecretary Role = "secretary"
)

// IsValid は既知のロールかどうかを返す。
func (r Role) IsValid() bool {
	return r == RoleClinician || r == RoleSecretary
}

// Session はログインセッションを表す。
// ログインで作成され、ログアウトで破棄される。
// ワークフローの各操作には暗黙のグローバル状態ではなく
// このSessionを明示的に渡す。
type Session struct {
	ID        string
	Role      Role
	ActorName string
}

// Actor はセッションから文書作成者の識別情報を生成する。
func (s *Session) Actor() Actor {
	return Actor{Name: s.ActorName, Role: s.Role}
}
