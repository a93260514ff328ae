// Package model はドメインモデルを定義する。
package model

// Patient は患者を表す。
// 患者データは外部（シードまたは院内システム）で作成され、
// 本サービスからは読み取り専用として扱う。
type Patient struct {
	ID       string
	Name     string
	DOB      string
	MRN      string
	Address  string
	Referrer string
}

// Appointment は予約を表す。１日分のカレンダーに表示される単位。
// Dateは "2006-01-02"、Timeは "15:04" 形式の文字列。
// PatientIDは患者ディレクトリ上の患者を参照するが、参照先が
// 存在しないことは有効な状態であり、表示上 "Unknown" として扱う。
type Appointment struct {
	ID        string
	Date      string
	Time      string
	PatientID string
}
