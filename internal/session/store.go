// Package session 로그인한 관리자 상태와 그 영속화.
//
// Store 는 명시적인 수명 주기를 가진다: Init 으로 저장된 레코드를 읽고,
// Login 으로 기록하고, Logout 으로 지운다. Logout 의 로컬 정리는 백엔드 로그아웃
// 성공 여부와 무관하게 항상 수행된다.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"garden-console/internal/domain/model"
	"garden-console/internal/logging"

	"go.uber.org/zap"
)

// StorageKey 단일 사용자 저장 키. 콘솔 세션은 StorageKey + ":" + sid.
const StorageKey = "admin_user"

// Cookie 백엔드 세션 쿠키 (이름/값만 보관)
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record 영속화되는 세션 레코드
type Record struct {
	User    model.AdminAccount `json:"user"`
	Cookies []Cookie           `json:"cookies,omitempty"`
	LoginAt time.Time          `json:"loginAt"`
	// Filters 목록별 마지막 검색 조건 지문
	Filters map[string]string `json:"filters,omitempty"`
}

func CookiesFrom(cs []*http.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cs))
	for _, c := range cs {
		if c == nil || c.Name == "" {
			continue
		}
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (r Record) HTTPCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// State 스냅샷
type State struct {
	User          *model.AdminAccount
	Authenticated bool
	Loading       bool
}

type Store struct {
	mu      sync.RWMutex
	key     string
	p       Persister
	log     *logging.Logger
	rec     *Record
	loading bool
}

func NewStore(key string, p Persister, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{key: key, p: p, log: log, loading: true}
}

func (s *Store) Key() string { return s.key }

// Init 저장된 레코드를 읽는다. 읽기/해석 실패는 비인증 상태로 끝나며 오류를 돌려주지 않는다.
// 해석할 수 없는 레코드는 지운다.
func (s *Store) Init(ctx context.Context) {
	rec := s.load(ctx)
	s.mu.Lock()
	s.rec = rec
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) load(ctx context.Context) *Record {
	raw, err := s.p.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrCorrupt) {
		s.log.WithContext(ctx).Warn("session_load_failed", zap.String("key", s.key), zap.Error(err))
		return nil
	}
	var rec Record
	if err == nil {
		err = json.Unmarshal(raw, &rec)
	}
	if err == nil && rec.User.AdminID == "" {
		err = errors.New("record without adminId")
	}
	if err != nil {
		s.log.WithContext(ctx).Warn("session_record_corrupt", zap.String("key", s.key), zap.Error(err))
		if derr := s.p.Delete(ctx, s.key); derr != nil {
			s.log.WithContext(ctx).Warn("session_record_discard_failed", zap.String("key", s.key), zap.Error(derr))
		}
		return nil
	}
	return &rec
}

// Login 상태를 설정하고 전체 레코드를 저장한다. 저장 실패 시에도 메모리 상태는 유지된다.
func (s *Store) Login(ctx context.Context, rec Record) error {
	if rec.LoginAt.IsZero() {
		rec.LoginAt = time.Now()
	}
	s.mu.Lock()
	s.rec = &rec
	s.loading = false
	s.mu.Unlock()
	return s.save(ctx, rec)
}

// Logout 상태를 비우고 저장된 레코드를 지운다. 삭제 오류는 돌려주지만 상태는 이미 비어 있다.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.rec = nil
	s.loading = false
	s.mu.Unlock()
	return s.p.Delete(ctx, s.key)
}

// UpdateUser 프로필 수정 후 세션의 사용자 정보를 갱신한다.
func (s *Store) UpdateUser(ctx context.Context, fn func(u *model.AdminAccount)) error {
	s.mu.Lock()
	if s.rec == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	fn(&s.rec.User)
	rec := *s.rec
	s.mu.Unlock()
	return s.save(ctx, rec)
}

// SetCookies 백엔드 쿠키가 바뀌었을 때만 저장한다.
func (s *Store) SetCookies(ctx context.Context, cookies []Cookie) error {
	s.mu.Lock()
	if s.rec == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if sameCookies(s.rec.Cookies, cookies) {
		s.mu.Unlock()
		return nil
	}
	s.rec.Cookies = append([]Cookie(nil), cookies...)
	rec := *s.rec
	s.mu.Unlock()
	return s.save(ctx, rec)
}

// LastFilter 목록 ns 에서 마지막으로 쓴 검색 조건 지문. 없으면 "".
func (s *Store) LastFilter(ns string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return ""
	}
	return s.rec.Filters[ns]
}

// SetFilter 지문이 바뀌었을 때만 저장한다.
func (s *Store) SetFilter(ctx context.Context, ns, fingerprint string) error {
	s.mu.Lock()
	if s.rec == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.rec.Filters[ns] == fingerprint {
		s.mu.Unlock()
		return nil
	}
	filters := make(map[string]string, len(s.rec.Filters)+1)
	for k, v := range s.rec.Filters {
		filters[k] = v
	}
	filters[ns] = fingerprint
	s.rec.Filters = filters
	rec := *s.rec
	s.mu.Unlock()
	return s.save(ctx, rec)
}

func (s *Store) save(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.p.Save(ctx, s.key, b)
}

// Current 현재 사용자 복사본. 비인증이면 nil, false.
func (s *Store) Current() (*model.AdminAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return nil, false
	}
	u := s.rec.User
	return &u, true
}

func (s *Store) Record() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return Record{}, false
	}
	rec := *s.rec
	rec.Cookies = append([]Cookie(nil), s.rec.Cookies...)
	return rec, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec != nil
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) State() State {
	u, ok := s.Current()
	return State{User: u, Authenticated: ok, Loading: s.IsLoading()}
}

func sameCookies(a, b []Cookie) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
