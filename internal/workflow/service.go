// Package workflow は臨床文書のワークフロー状態機械を提供する。
//
// 文書は pending_secretary / pending_clinician / completed の
// いずれかの状態を持ち、遷移はセッションのロールで出し分けられる。
// ロールはラベルであり、セキュリティ境界ではない。
//
// サービスは永続化層から取得した文書のインメモリスナップショットを
// 保持し、遷移はスナップショットに適用した上で永続化する。永続化の
// 失敗はローカル状態を巻き戻さず、非致命的なエラーとして返す。
package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/karteflow/internal/model"
	"github.com/hitoshi/karteflow/internal/repository"
)

// 遷移アクション名。メトリクスのラベルとエラーメッセージに使用する。
const (
	ActionCreate           = "create"
	ActionForward          = "forward"
	ActionSendBack         = "sendback"
	ActionComplete         = "complete"
	ActionCompleteOnCreate = "complete_on_create"
	ActionExport           = "export"
)

// PatientResolver は患者参照の解決に必要なインターフェース。
// directory.Serviceの部分集合として定義する。
type PatientResolver interface {
	FindByID(id string) *model.Patient
}

// ContentSanitizer は文書本文のサニタイズに必要なインターフェース。
type ContentSanitizer interface {
	Sanitize(rawHTML string) string
}

// ArtifactRenderer は出力アーティファクトの生成に必要なインターフェース。
// 生成の失敗は文書の状態に影響しない。
type ArtifactRenderer interface {
	Render(doc *model.Document) ([]byte, error)
}

// Recorder はワークフローのメトリクス記録インターフェース。
type Recorder interface {
	RecordTransition(action string)
	RecordPersistenceFailure(kind string)
	RecordExport()
}

// nopRecorder はメトリクス未設定時のRecorder実装。
type nopRecorder struct{}

func (nopRecorder) RecordTransition(action string)    {}
func (nopRecorder) RecordPersistenceFailure(k string) {}
func (nopRecorder) RecordExport()                     {}

// Service は文書ワークフローのサービス層。
type Service struct {
	repo      repository.DocumentRepository
	resolver  PatientResolver
	sanitizer ContentSanitizer
	renderer  ArtifactRenderer
	recorder  Recorder
	idgen     *IDGenerator

	mu   sync.RWMutex
	docs []*model.Document
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderがnilの場合はメトリクスを記録しない。
func NewService(
	repo repository.DocumentRepository,
	resolver PatientResolver,
	sanitizer ContentSanitizer,
	renderer ArtifactRenderer,
	recorder Recorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:      repo,
		resolver:  resolver,
		sanitizer: sanitizer,
		renderer:  renderer,
		recorder:  recorder,
		idgen:     NewIDGenerator(),
	}
}

// Refresh は永続化層から文書スナップショットを再読込する。
// 失敗した場合は直前のスナップショットを保持したままログに記録し、
// PersistenceReadFailureを返す。
func (s *Service) Refresh(ctx context.Context) error {
	docs, err := s.repo.List(ctx)
	if err != nil {
		slog.Error("failed to refresh document snapshot",
			slog.String("error", err.Error()),
		)
		s.recorder.RecordPersistenceFailure("read")
		return model.NewPersistenceReadError()
	}

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()

	return nil
}

// Create は臨床医が選択した患者に対して新規文書を作成する。
// 文書は pending_secretary 状態で開始し、作成した臨床医の
// 文書一覧に現れる。患者は作成時点でディレクトリに存在して
// いなければならない。
func (s *Service) Create(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error) {
	return s.create(ctx, sess, patientID, content, model.StatusPendingSecretary, ActionCreate)
}

// CompleteOnCreate は患者詳細画面からの直接完了パス。
// 中間状態を経ずに completed 状態の文書を新規作成する。
// 既存文書に対する遷移としての完了（Complete）とは別の、
// 完了へのもう一つの到達経路として維持する。
func (s *Service) CompleteOnCreate(ctx context.Context, sess *model.Session, patientID, content string) (*model.Document, error) {
	return s.create(ctx, sess, patientID, content, model.StatusCompleted, ActionCompleteOnCreate)
}

func (s *Service) create(ctx context.Context, sess *model.Session, patientID, content string, status model.DocumentStatus, action string) (*model.Document, error) {
	if sess.Role != model.RoleClinician {
		return nil, model.NewRoleDeniedError(sess.Role)
	}

	patient := s.resolver.FindByID(patientID)
	if patient == nil {
		return nil, model.NewPatientNotFoundError(patientID)
	}

	doc := &model.Document{
		ID:        s.idgen.Next(),
		Patient:   *patient,
		Content:   s.sanitizer.Sanitize(content),
		Status:    status,
		Clinician: sess.Actor(),
	}

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()

	s.recorder.RecordTransition(action)

	if err := s.repo.Create(ctx, doc); err != nil {
		slog.Error("failed to persist new document",
			slog.Int64("doc_id", doc.ID),
			slog.String("error", err.Error()),
		)
		s.recorder.RecordPersistenceFailure("write")
		// ローカルの楽観的状態は保持する。自動リトライはしない。
		return doc, model.NewPersistenceWriteError()
	}

	return doc, nil
}

// Forward は秘書が編集した文書を臨床医のレビューへ回す。
// pending_secretary -> pending_clinician。
func (s *Service) Forward(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
	return s.transition(ctx, sess, docID, content, model.RoleSecretary, model.StatusPendingSecretary, model.StatusPendingClinician, ActionForward)
}

// SendBack は臨床医がレビュー中の文書を秘書へ差し戻す。
// pending_clinician -> pending_secretary。
func (s *Service) SendBack(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
	return s.transition(ctx, sess, docID, content, model.RoleClinician, model.StatusPendingClinician, model.StatusPendingSecretary, ActionSendBack)
}

// Complete は臨床医がレビュー中の文書を完了にする。
// pending_clinician -> completed。completed に終端ロックはなく、
// 完了後の行にアクションを出さないのは表示層の責務。
func (s *Service) Complete(ctx context.Context, sess *model.Session, docID int64, content string) (*model.Document, error) {
	return s.transition(ctx, sess, docID, content, model.RoleClinician, model.StatusPendingClinician, model.StatusCompleted, ActionComplete)
}

func (s *Service) transition(ctx context.Context, sess *model.Session, docID int64, content string, role model.Role, from, to model.DocumentStatus, action string) (*model.Document, error) {
	if sess.Role != role {
		return nil, model.NewRoleDeniedError(sess.Role)
	}

	s.mu.Lock()
	doc := s.findLocked(docID)
	if doc == nil {
		s.mu.Unlock()
		return nil, model.NewDocumentNotFoundError(docID)
	}
	if doc.Status != from {
		status := doc.Status
		s.mu.Unlock()
		return nil, model.NewInvalidTransitionError(status, action)
	}

	doc.Content = s.sanitizer.Sanitize(content)
	doc.Status = to
	s.mu.Unlock()

	s.recorder.RecordTransition(action)

	if err := s.repo.Update(ctx, doc); err != nil {
		slog.Error("failed to persist document transition",
			slog.Int64("doc_id", doc.ID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		s.recorder.RecordPersistenceFailure("write")
		return doc, model.NewPersistenceWriteError()
	}

	return doc, nil
}

// Export は秘書向けの出力アーティファクトを生成する。
// 文書の状態は変更しない。生成の失敗は非致命的で、状態にも
// 影響しない。
func (s *Service) Export(sess *model.Session, docID int64) ([]byte, error) {
	if sess.Role != model.RoleSecretary {
		return nil, model.NewRoleDeniedError(sess.Role)
	}

	s.mu.RLock()
	doc := s.findLocked(docID)
	s.mu.RUnlock()
	if doc == nil {
		return nil, model.NewDocumentNotFoundError(docID)
	}

	artifact, err := s.renderer.Render(doc)
	if err != nil {
		slog.Error("failed to render export artifact",
			slog.Int64("doc_id", doc.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewExportFailedError()
	}

	s.recorder.RecordExport()
	return artifact, nil
}

// MyDocuments は現在のセッションの臨床医が作成した文書のみを返す。
// 文書全体に対する読み取り投影であり、別のストアではない。
// 該当なしの空スライスは有効な結果。
func (s *Service) MyDocuments(sess *model.Session) ([]*model.Document, error) {
	if sess.Role != model.RoleClinician {
		return nil, model.NewRoleDeniedError(sess.Role)
	}

	actor := sess.Actor()

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Document, 0)
	for _, doc := range s.docs {
		if doc.Clinician == actor {
			result = append(result, doc)
		}
	}
	return result, nil
}

// ListAll は秘書向けに全文書を返す。
func (s *Service) ListAll(sess *model.Session) ([]*model.Document, error) {
	if sess.Role != model.RoleSecretary {
		return nil, model.NewRoleDeniedError(sess.Role)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Document, len(s.docs))
	copy(result, s.docs)
	return result, nil
}

// Get は文書IDで文書をスナップショットから取得する。
// 見つからない場合はnilを返す。
func (s *Service) Get(docID int64) *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(docID)
}

// findLocked は呼び出し側がロックを保持している前提でIDで文書を探す。
func (s *Service) findLocked(docID int64) *model.Document {
	for _, doc := range s.docs {
		if doc.ID == docID {
			return doc
		}
	}
	return nil
}
