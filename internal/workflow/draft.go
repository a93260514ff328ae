package workflow

import "github.com/hitoshi/karteflow/internal/model"

// Draft は編集セッション中のローカルな未確定コピーを表す。
// 臨床医・秘書いずれのキューから編集に入った場合も、遷移アクションが
// 確定するまで編集はこのコピーに対して行われる。キャンセルは
// ドラフトを破棄するだけで、何も永続化されない。
type Draft struct {
	DocumentID int64
	Content    string
}

// BeginEdit は文書の編集を開始し、本文のローカルコピーを返す。
// 文書が見つからない場合はエラーを返す。
func (s *Service) BeginEdit(docID int64) (*Draft, error) {
	doc := s.Get(docID)
	if doc == nil {
		return nil, model.NewDocumentNotFoundError(docID)
	}
	return &Draft{
		DocumentID: doc.ID,
		Content:    doc.Content,
	}, nil
}
