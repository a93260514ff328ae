// Package calendar は日単位の予約カレンダーのドメインロジックを提供する。
package calendar

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/karteflow/internal/model"
	"github.com/hitoshi/karteflow/internal/repository"
)

// DateLayout はカレンダー日付の文字列形式。
const DateLayout = "2006-01-02"

// PatientResolver は予約から患者参照を解決するためのインターフェース。
// directory.Serviceの部分集合として定義する。
type PatientResolver interface {
	FindByID(id string) *model.Patient
}

// Service は予約カレンダーのサービス層。
// 永続化層から取得した予約のインメモリスナップショットを保持する。
type Service struct {
	repo     repository.AppointmentRepository
	resolver PatientResolver

	mu    sync.RWMutex
	appts []*model.Appointment
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.AppointmentRepository, resolver PatientResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// Refresh は永続化層から予約スナップショットを再読込する。
// 失敗した場合は直前のスナップショットを保持したままログに記録し、
// PersistenceReadFailureを返す。
func (s *Service) Refresh(ctx context.Context) error {
	appts, err := s.repo.List(ctx)
	if err != nil {
		slog.Error("failed to refresh appointment calendar",
			slog.String("error", err.Error()),
		)
		return model.NewPersistenceReadError()
	}

	s.mu.Lock()
	s.appts = appts
	s.mu.Unlock()

	return nil
}

// AppointmentsOnDate は指定日の予約を時刻の「時」の昇順で返す。
// 日付は暦日の完全一致。並び替えのキーは時のみで、同じ時の予約は
// 取得時の相対順を保持する（安定ソート）。分はキーに含めない。
func (s *Service) AppointmentsOnDate(date string) []*model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Appointment, 0)
	for _, a := range s.appts {
		if a.Date == date {
			result = append(result, a)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return hourOf(result[i].Time) < hourOf(result[j].Time)
	})

	return result
}

// AdvanceDay は日付をdelta日ずらした日付を返す。
// 月末・年末の繰り上がりを正しく処理する。
// 日付形式が不正な場合はエラーを返す。
func AdvanceDay(date string, delta int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", model.NewInvalidDateError(date)
	}
	return t.AddDate(0, 0, delta).Format(DateLayout), nil
}

// ResolvePatient は予約の患者参照をディレクトリで解決する。
// 参照先が存在しない場合はnilを返す。これは表示可能な結果で
// あり、エラーではない。
func (s *Service) ResolvePatient(a *model.Appointment) *model.Patient {
	return s.resolver.FindByID(a.PatientID)
}

// FindByID は予約IDで予約をスナップショットから取得する。
// 見つからない場合はnilを返す。
func (s *Service) FindByID(id string) *model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.appts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// hourOf は "15:04" 形式の時刻から時を取り出す。
// 解析できない場合は0として扱う。
func hourOf(t string) int {
	h, _, found := strings.Cut(t, ":")
	if !found {
		return 0
	}
	n, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return n
}
