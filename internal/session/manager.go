package session

import (
	"context"
	"strings"

	"garden-console/internal/logging"
	"garden-console/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Toucher 만료 연장을 지원하는 저장소
type Toucher interface {
	Touch(ctx context.Context, key string) error
}

// Manager 브라우저 세션마다 하나의 Store. 상태는 저장소에만 두므로 인스턴스 간에 공유된다.
type Manager struct {
	p   Persister
	log *logging.Logger
}

func NewManager(p Persister, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{p: p, log: log}
}

func Key(sid string) string { return StorageKey + ":" + sid }

// Create 새 세션 id 를 발급하고 레코드를 저장한다.
func (m *Manager) Create(ctx context.Context, rec Record) (string, *Store, error) {
	sid := uuid.NewString()
	st := NewStore(Key(sid), m.p, m.log)
	if err := st.Login(ctx, rec); err != nil {
		return "", nil, err
	}
	metrics.ActiveSessions.Inc()
	m.log.WithContext(ctx).Info("console_session_created", zap.String("admin_id", rec.User.AdminID))
	return sid, st, nil
}

// Open 저장된 세션을 읽는다. 없거나 깨졌으면 false.
func (m *Manager) Open(ctx context.Context, sid string) (*Store, bool) {
	if sid = strings.TrimSpace(sid); sid == "" {
		return nil, false
	}
	st := NewStore(Key(sid), m.p, m.log)
	st.Init(ctx)
	if !st.IsAuthenticated() {
		return nil, false
	}
	if t, ok := m.p.(Toucher); ok {
		if err := t.Touch(ctx, st.Key()); err != nil {
			m.log.WithContext(ctx).Warn("console_session_touch_failed", zap.Error(err))
		}
	}
	return st, true
}

// Destroy 로컬 세션 정리. 저장소 삭제 실패도 호출자에게 알린다.
func (m *Manager) Destroy(ctx context.Context, st *Store) error {
	if st == nil {
		return nil
	}
	was := st.IsAuthenticated()
	err := st.Logout(ctx)
	if was {
		metrics.ActiveSessions.Dec()
	}
	if err != nil {
		m.log.WithContext(ctx).Warn("console_session_delete_failed", zap.String("key", st.Key()), zap.Error(err))
	}
	return err
}
