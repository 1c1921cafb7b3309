package session

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound         = errors.New("session: record not found")
	ErrCorrupt          = errors.New("session: record corrupt")
	ErrNotAuthenticated = errors.New("session: not authenticated")
)

// Persister 세션 레코드 저장소. 없는 키는 ErrNotFound, 읽었지만 해석할 수 없으면 ErrCorrupt.
// Delete 는 없는 키에 대해서도 nil.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type MemoryPersister struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryPersister() *MemoryPersister { return &MemoryPersister{data: make(map[string][]byte)} }

func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Has 테스트 보조
func (m *MemoryPersister) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
