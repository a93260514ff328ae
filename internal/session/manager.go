// Package session はロールベースのセッション管理を提供する。
// 資格情報の検証は行わず、ロール選択のみでセッションを発行する。
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hitoshi/karteflow/internal/model"
)

// Manager はメモリ上のセッションストアを表す。
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewManager はセッションマネージャを生成する。
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*model.Session),
	}
}

// Login はロールを選択してセッションを開始する。
// ロールが不正な場合はエラーを返す。
func (m *Manager) Login(role, actorName string) (*model.Session, error) {
	r := model.Role(role)
	if !r.IsValid() {
		return nil, model.NewInvalidRoleError(role)
	}

	sess := &model.Session{
		ID:        uuid.New().String(),
		Role:      r,
		ActorName: actorName,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess, nil
}

// Logout はセッションを破棄する。存在しないIDは何もしない。
func (m *Manager) Logout(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Get はセッションIDからセッションを取得する。
// 見つからない場合は nil を返す。
func (m *Manager) Get(sessionID string) *model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID]
}
