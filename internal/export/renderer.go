// Package export は完了確認済み文書の出力アーティファクト生成を提供する。
// 病院情報と患者情報を定型レイアウトに配置したHTML文書を生成する。
package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/hitoshi/karteflow/internal/model"
)

// アーティファクトのレイアウト。病院名・住所を右上、
// 患者名・住所を左上、本文、署名欄の順に配置する。
const artifactTemplate = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.HospitalName}} - 文書 {{.DocumentID}}</title>
<style>
body { font-family: sans-serif; margin: 40px; }
.hospital { text-align: right; }
.patient { text-align: left; margin-top: 24px; }
.content { margin-top: 32px; line-height: 1.6; }
.signature { margin-top: 64px; border-top: 1px solid #000; width: 280px; padding-top: 4px; }
</style>
</head>
<body>
<div class="hospital">
<div>{{.HospitalName}}</div>
<div>{{.HospitalAddress}}</div>
</div>
<div class="patient">
<div>{{.PatientName}}</div>
<div>{{.PatientAddress}}</div>
</div>
<div class="content">{{.Content}}</div>
<div class="signature">{{.ClinicianName}}</div>
</body>
</html>
`

// Renderer は文書をHTMLアーティファクトに変換する。
type Renderer struct {
	hospitalName    string
	hospitalAddress string
	tmpl            *template.Template
}

// NewRenderer はアーティファクトレンダラーを生成する。
// 病院名と住所は設定から渡され、全アーティファクトのヘッダに印字される。
func NewRenderer(hospitalName, hospitalAddress string) *Renderer {
	return &Renderer{
		hospitalName:    hospitalName,
		hospitalAddress: hospitalAddress,
		tmpl:            template.Must(template.New("artifact").Parse(artifactTemplate)),
	}
}

// templateData はテンプレートに渡すレイアウト要素。
type templateData struct {
	HospitalName    string
	HospitalAddress string
	PatientName     string
	PatientAddress  string
	// 本文は保存時にサニタイズ済みのHTML
	Content       template.HTML
	ClinicianName string
	DocumentID    int64
}

// Render は文書からHTMLアーティファクトを生成する。
func (r *Renderer) Render(doc *model.Document) ([]byte, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, templateData{
		HospitalName:    r.hospitalName,
		HospitalAddress: r.hospitalAddress,
		PatientName:     doc.Patient.Name,
		PatientAddress:  doc.Patient.Address,
		Content:         template.HTML(doc.Content),
		ClinicianName:   doc.Clinician.Name,
		DocumentID:      doc.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("アーティファクトの生成に失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName はアーティファクトのダウンロードファイル名を返す。
func FileName(docID int64) string {
	return fmt.Sprintf("document_%d.html", docID)
}
