// Package directory は患者ディレクトリのドメインロジックを提供する。
//
// ディレクトリは永続化層から取得した患者一覧のインメモリスナップ
// ショットを保持する。検索はスナップショットに対する同期・純粋な
// 操作であり、スナップショットの更新（Refresh）は明示的な独立操作
// として提供する。
package directory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/hitoshi/karteflow/internal/model"
	"github.com/hitoshi/karteflow/internal/repository"
)

// Service は患者ディレクトリのサービス層。
type Service struct {
	repo repository.PatientRepository

	mu       sync.RWMutex
	patients []*model.Patient
}

// NewService はServiceの新しいインスタンスを生成する。
// スナップショットは空で開始し、最初のRefreshで読み込まれる。
func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// Refresh は永続化層から患者スナップショットを再読込する。
// 失敗した場合は直前のスナップショットを保持したままログに記録し、
// PersistenceReadFailureを返す。致命的ではない。
func (s *Service) Refresh(ctx context.Context) error {
	patients, err := s.repo.List(ctx)
	if err != nil {
		slog.Error("failed to refresh patient directory",
			slog.String("error", err.Error()),
		)
		return model.NewPersistenceReadError()
	}

	s.mu.Lock()
	s.patients = patients
	s.mu.Unlock()

	return nil
}

// Search は検索語にマッチする患者をディレクトリ順で返す。
// 検索語が空の場合はディレクトリ全体をそのままの順序で返す。
// マッチングは氏名またはMRNに対する大文字小文字を無視した
// 部分文字列一致。結果が空であることは有効な結果であり、
// エラーではない。
func (s *Service) Search(term string) []*model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if term == "" {
		result := make([]*model.Patient, len(s.patients))
		copy(result, s.patients)
		return result
	}

	lower := strings.ToLower(term)
	result := make([]*model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.MRN), lower) {
			result = append(result, p)
		}
	}
	return result
}

// FindByID は患者IDで患者を解決する。
// 見つからない場合はnilを返す。未解決の参照は表示可能な状態で
// あり、エラーではない。
func (s *Service) FindByID(id string) *model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.patients {
		if p.ID == id {
			return p
		}
	}
	return nil
}
