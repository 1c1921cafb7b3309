package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"garden-console/internal/config"
	"garden-console/internal/dashboard"
	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/pkg/cache"
	"garden-console/internal/security/jwt"
	handlerset "garden-console/internal/server/http/handler"
	consoleh "garden-console/internal/server/http/handler/console"
	"garden-console/internal/server/http/middleware"
	sec "garden-console/internal/server/http/middleware/security"
	"garden-console/internal/session"
	"garden-console/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

// fakeBackend 메모리얼 백엔드 흉내. 로그인하면 JSESSIONID 를 발급하고, expired 가 켜지면 모든 호출에 세션 만료 401.
// killed 에 든 JSESSIONID 는 그 세션만 만료된다.
type fakeBackend struct {
	expired atomic.Bool
	updates atomic.Int32
	logouts atomic.Int32
	lists   atomic.Int32
	killed  sync.Map

	mu        sync.Mutex
	lastQuery url.Values
}

func (b *fakeBackend) query() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

var grades = map[string]int{"admin1": 3, "editor1": 1}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	write := func(status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	ok := func(data interface{}) { write(200, map[string]interface{}{"success": true, "code": 200, "message": "OK", "data": data}) }
	page := func(total int) map[string]interface{} {
		return map[string]interface{}{"content": []interface{}{}, "totalElements": total, "totalPages": 1, "number": 0, "size": 1}
	}

	if r.URL.Path == "/admin/auth/login" {
		var req struct {
			AdminID  string `json:"adminId"`
			AdminPwd string `json:"adminPwd"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		g, known := grades[req.AdminID]
		if !known || req.AdminPwd != "secret" {
			write(401, map[string]interface{}{"success": false, "message": "아이디 또는 비밀번호가 올바르지 않습니다"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "sess-" + req.AdminID, Path: "/"})
		ok(map[string]interface{}{"sessionId": "sess-" + req.AdminID, "adminId": req.AdminID, "adminNickName": "관리자", "adminGrade": g, "lastLoginTime": "2026-10-16T09:00:00"})
		return
	}
	ck, err := r.Cookie("JSESSIONID")
	if err != nil || ck.Value == "" || b.expired.Load() {
		write(401, map[string]interface{}{"success": false, "message": "세션이 만료되었습니다"})
		return
	}
	if _, dead := b.killed.Load(ck.Value); dead {
		write(401, map[string]interface{}{"success": false, "message": "세션이 만료되었습니다"})
		return
	}
	if r.Method == http.MethodGet {
		b.mu.Lock()
		b.lastQuery = r.URL.Query()
		b.mu.Unlock()
	}
	switch {
	case r.URL.Path == "/admin/auth/logout":
		b.logouts.Add(1)
		ok(nil)
	case r.URL.Path == "/admin/flower-messages" && r.Method == http.MethodGet:
		b.lists.Add(1)
		ok(page(12))
	case strings.HasPrefix(r.URL.Path, "/admin/flower-messages/") && r.Method == http.MethodPut:
		b.updates.Add(1)
		ok(map[string]interface{}{"id": 7, "content": "수정됨"})
	case r.URL.Path == "/admin/leaf-messages":
		b.lists.Add(1)
		ok(page(5))
	case r.URL.Path == "/admin/accounts/me/password":
		write(401, map[string]interface{}{"success": false, "message": "현재 비밀번호가 일치하지 않습니다"})
	case r.URL.Path == "/admin/accounts":
		ok([]map[string]interface{}{{"adminIndex": 1, "adminId": "admin1", "adminGrade": 3}, {"adminIndex": 2, "adminId": "editor1", "adminGrade": 1}})
	case r.URL.Path == "/admin/logs/logins":
		ok(page(4))
	default:
		write(404, map[string]interface{}{"success": false, "message": "not found"})
	}
}

type testEnv struct {
	router  *gin.Engine
	store   *session.MemoryPersister
	backend *fakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvTTL(t, time.Minute)
}

// newTestEnvTTL 목록 캐시 TTL 을 지정한다
func newTestEnvTTL(t *testing.T, listTTL time.Duration) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	upstream, err := gardenapi.New(gardenapi.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.HTTP.CookieName = "garden_console"
	lg := logging.Nop()
	mem := session.NewMemoryPersister()
	sessions := session.NewManager(mem, lg)
	auth := &sec.Authenticator{
		JWT:        jwt.NewManager("0123456789abcdef-secret", 3600, "garden-console"),
		Sessions:   sessions,
		Upstream:   upstream,
		CookieName: cfg.HTTP.CookieName,
		Logger:     lg,
	}
	deps := consoleh.Dependencies{
		Upstream:  upstream,
		Sessions:  sessions,
		Auth:      auth,
		Dashboard: dashboard.NewService(lg),
		Lists:     cache.NewListCache(cache.NewLocal(time.Minute), cache.NewLocalVersions(), listTTL),
		Logger:    lg,
	}
	r := NewRouter(cfg, lg, NewHealthChecker(nil, nil, nil, nil, upstream), auth, middleware.NewIPLimiter(60, 3), nil, handlerset.NewHandlerSet(deps))
	return &testEnv{router: r, store: mem, backend: backend}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func (e *testEnv) login(t *testing.T, id string) *http.Cookie {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/console/auth/login", `{"adminId":"`+id+`","adminPwd":"secret"}`)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("login %s: %d %s", id, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "garden_console" && c.Value != "" {
			return c
		}
	}
	t.Fatal("console cookie not issued")
	return nil
}

func TestLoginAndMe(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")

	w, env := e.do(t, http.MethodGet, "/console/auth/me", "", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	var me struct {
		User struct {
			AdminID    string `json:"adminId"`
			AdminGrade int    `json:"adminGrade"`
		} `json:"user"`
		GradeName    string          `json:"gradeName"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatal(err)
	}
	if me.User.AdminID != "admin1" || me.User.AdminGrade != 3 || me.GradeName != "SUPER_ADMIN" || !me.Capabilities["manage_admins"] {
		t.Fatalf("me = %+v", me)
	}

	// 백엔드 쿠키가 세션에 남아 있어야 목록 호출이 통과한다
	w, env = e.do(t, http.MethodGet, "/console/flower-messages?page=0&size=10", "", ck)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.do(t, http.MethodPost, "/console/auth/login", `{"adminId":"admin1","adminPwd":"nope"}`)
	if w.Code != http.StatusUnauthorized || env.Code != retcode.LOGIN_ERROR {
		t.Fatalf("got %d %+v", w.Code, env)
	}
	if env.Message != "아이디 또는 비밀번호가 올바르지 않습니다" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestNoCookie(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.do(t, http.MethodGet, "/console/dashboard", "")
	if w.Code != http.StatusUnauthorized || env.Code != retcode.NOT_LOGIN {
		t.Fatalf("got %d %+v", w.Code, env)
	}
	if !strings.Contains(string(env.Data), `"/login"`) {
		t.Fatalf("data = %s", env.Data)
	}
}

func TestUpstreamSessionExpiry(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")
	e.backend.expired.Store(true)

	w, env := e.do(t, http.MethodGet, "/console/leaf-messages", "", ck)
	if w.Code != http.StatusUnauthorized || env.Code != retcode.SESSION_TIMEOUT {
		t.Fatalf("got %d %+v", w.Code, env)
	}
	if !strings.Contains(string(env.Data), `"redirect":"/login"`) {
		t.Fatalf("data = %s", env.Data)
	}
	// 로컬 세션은 지워졌다
	w, _ = e.do(t, http.MethodGet, "/console/auth/me", "", ck)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after expiry = %d", w.Code)
	}
}

func TestCapabilityGate(t *testing.T) {
	e := newTestEnv(t)
	editor := e.login(t, "editor1")
	for _, path := range []string{"/console/accounts", "/console/logs/logins", "/console/logs/activities"} {
		w, env := e.do(t, http.MethodGet, path, "", editor)
		if w.Code != http.StatusForbidden || env.Code != retcode.AUTH_ERROR {
			t.Errorf("%s: %d %+v", path, w.Code, env)
		}
	}
	admin := e.login(t, "admin1")
	w, _ := e.do(t, http.MethodGet, "/console/accounts", "", admin)
	if w.Code != http.StatusOK {
		t.Fatalf("admin accounts: %d %s", w.Code, w.Body.String())
	}
}

func TestFlowerContentTooLong(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")
	long := strings.Repeat("꽃", 51)
	w, env := e.do(t, http.MethodPut, "/console/flower-messages/7", `{"content":"`+long+`"}`, ck)
	if w.Code != http.StatusBadRequest || env.Code != retcode.PARAM_INVALID {
		t.Fatalf("got %d %+v", w.Code, env)
	}
	if n := e.backend.updates.Load(); n != 0 {
		t.Fatalf("backend updates = %d, want 0", n)
	}
	w, _ = e.do(t, http.MethodPut, "/console/flower-messages/7", `{"content":"`+strings.Repeat("꽃", 50)+`"}`, ck)
	if w.Code != http.StatusOK || e.backend.updates.Load() != 1 {
		t.Fatalf("50 runes: %d updates=%d", w.Code, e.backend.updates.Load())
	}
}

func TestDashboardByGrade(t *testing.T) {
	tests := []struct {
		name       string
		admin      string
		wantAdmins int64
		wantLogins int64
	}{
		{name: "최고 관리자", admin: "admin1", wantAdmins: 2, wantLogins: 4},
		{name: "편집자", admin: "editor1", wantAdmins: 0, wantLogins: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			ck := e.login(t, tt.admin)
			w, env := e.do(t, http.MethodGet, "/console/dashboard", "", ck)
			if w.Code != http.StatusOK {
				t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
			}
			var s struct {
				TotalFlowerMessages int64 `json:"totalFlowerMessages"`
				TotalLeafMessages   int64 `json:"totalLeafMessages"`
				TotalAdmins         int64 `json:"totalAdmins"`
				TodayLogins         int64 `json:"todayLogins"`
			}
			if err := json.Unmarshal(env.Data, &s); err != nil {
				t.Fatal(err)
			}
			if s.TotalFlowerMessages != 12 || s.TotalLeafMessages != 5 || s.TotalAdmins != tt.wantAdmins || s.TodayLogins != tt.wantLogins {
				t.Fatalf("stats = %+v", s)
			}
		})
	}
}

func TestLogoutAlwaysClearsSession(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")
	e.backend.expired.Store(true)
	w, env := e.do(t, http.MethodPost, "/console/auth/logout", "", ck)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}
	e.backend.expired.Store(false)
	w, _ = e.do(t, http.MethodGet, "/console/auth/me", "", ck)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", w.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	e := newTestEnv(t)
	var last int
	for i := 0; i < 5; i++ {
		w, _ := e.do(t, http.MethodPost, "/console/auth/login", `{"adminId":"admin1","adminPwd":"nope"}`)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("last status = %d, want 429", last)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.do(t, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
	w, _ = e.do(t, http.MethodGet, "/readyz?refresh=1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"upstream":"up"`) {
		t.Fatalf("readyz = %d %s", w.Code, w.Body.String())
	}
}

func TestListPageResetsOnFilterChange(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")

	steps := []struct {
		name     string
		path     string
		wantPage string
	}{
		{name: "첫 검색은 0 페이지", path: "/console/flower-messages?searchKeyword=%ED%8A%A4%EB%A6%BD&page=2&size=10", wantPage: "0"},
		{name: "같은 조건 페이지 이동", path: "/console/flower-messages?searchKeyword=%ED%8A%A4%EB%A6%BD&page=2&size=10", wantPage: "2"},
		{name: "조건이 바뀌면 남은 페이지 무시", path: "/console/flower-messages?searchKeyword=%EC%9E%A5%EB%AF%B8&page=4&size=10", wantPage: "0"},
		{name: "다른 목록은 따로 기억", path: "/console/leaf-messages?page=3&size=10", wantPage: "3"},
	}
	for _, st := range steps {
		w, env := e.do(t, http.MethodGet, st.path, "", ck)
		if w.Code != http.StatusOK || !env.Success {
			t.Fatalf("%s: %d %s", st.name, w.Code, w.Body.String())
		}
		if got := e.backend.query().Get("page"); got != st.wantPage {
			t.Fatalf("%s: upstream page = %q, want %q", st.name, got, st.wantPage)
		}
	}
}

func TestMalformedPageRejected(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")
	for _, path := range []string{"/console/flower-messages?page=abc", "/console/leaf-messages?size=x"} {
		w, env := e.do(t, http.MethodGet, path, "", ck)
		if w.Code != http.StatusBadRequest || env.Code != retcode.PARAM_INVALID {
			t.Errorf("%s: %d %+v", path, w.Code, env)
		}
	}
	if n := e.backend.lists.Load(); n != 0 {
		t.Fatalf("backend lists = %d, want 0", n)
	}
}

func TestListCacheDoesNotHideSessionExpiry(t *testing.T) {
	t.Run("다른 세션의 캐시", func(t *testing.T) {
		e := newTestEnv(t)
		admin := e.login(t, "admin1")
		editor := e.login(t, "editor1")
		if w, _ := e.do(t, http.MethodGet, "/console/leaf-messages", "", admin); w.Code != http.StatusOK {
			t.Fatalf("admin list = %d", w.Code)
		}
		e.backend.killed.Store("sess-editor1", true)
		w, env := e.do(t, http.MethodGet, "/console/leaf-messages", "", editor)
		if w.Code != http.StatusUnauthorized || env.Code != retcode.SESSION_TIMEOUT {
			t.Fatalf("editor list after backend expiry = %d %+v", w.Code, env)
		}
		if w, _ := e.do(t, http.MethodGet, "/console/leaf-messages", "", admin); w.Code != http.StatusOK {
			t.Fatalf("admin list after editor expiry = %d", w.Code)
		}
	})
	t.Run("같은 세션은 캐시 TTL 안에서만", func(t *testing.T) {
		e := newTestEnvTTL(t, 200*time.Millisecond)
		ck := e.login(t, "admin1")
		if w, _ := e.do(t, http.MethodGet, "/console/leaf-messages", "", ck); w.Code != http.StatusOK {
			t.Fatalf("first list = %d", w.Code)
		}
		if w, _ := e.do(t, http.MethodGet, "/console/leaf-messages", "", ck); w.Code != http.StatusOK || e.backend.lists.Load() != 1 {
			t.Fatalf("cached list = %d backend lists=%d", w.Code, e.backend.lists.Load())
		}
		e.backend.expired.Store(true)
		time.Sleep(300 * time.Millisecond)
		w, env := e.do(t, http.MethodGet, "/console/leaf-messages", "", ck)
		if w.Code != http.StatusUnauthorized || env.Code != retcode.SESSION_TIMEOUT {
			t.Fatalf("list after ttl = %d %+v", w.Code, env)
		}
	})
}

func TestUpstreamCredentialFailureIsForbidden(t *testing.T) {
	e := newTestEnv(t)
	ck := e.login(t, "admin1")
	w, env := e.do(t, http.MethodPut, "/console/accounts/me/password", `{"currentPassword":"wrong","newPassword":"n3w","confirmNewPassword":"n3w"}`, ck)
	if w.Code != http.StatusForbidden || env.Message != "현재 비밀번호가 일치하지 않습니다" {
		t.Fatalf("got %d %+v", w.Code, env)
	}
	// 세션은 그대로다
	if w, _ := e.do(t, http.MethodGet, "/console/auth/me", "", ck); w.Code != http.StatusOK {
		t.Fatalf("me after password failure = %d", w.Code)
	}
}
