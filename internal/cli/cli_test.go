package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"garden-console/internal/gardenapi"
)

// fakeBackend 로그인하면 JSESSIONID 를 발급하고, 그 외 경로는 쿠키가 없거나 expired 면 세션 만료 401.
type fakeBackend struct {
	expired  atomic.Bool
	accounts atomic.Int32
	updates  atomic.Int32
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	write := func(status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	ok := func(data interface{}) { write(200, map[string]interface{}{"success": true, "code": 200, "message": "OK", "data": data}) }

	if r.URL.Path == "/admin/auth/login" {
		var req struct {
			AdminID  string `json:"adminId"`
			AdminPwd string `json:"adminPwd"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		grades := map[string]int{"admin1": 3, "editor1": 1}
		g, known := grades[req.AdminID]
		if !known || req.AdminPwd != "secret" {
			write(401, map[string]interface{}{"success": false, "message": "아이디 또는 비밀번호가 올바르지 않습니다"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "sess-" + req.AdminID, Path: "/"})
		ok(map[string]interface{}{"adminId": req.AdminID, "adminNickName": "관리자", "adminGrade": g})
		return
	}
	if ck, err := r.Cookie("JSESSIONID"); err != nil || ck.Value == "" || b.expired.Load() {
		write(401, map[string]interface{}{"success": false, "message": "세션이 만료되었습니다"})
		return
	}
	switch {
	case r.URL.Path == "/admin/auth/logout":
		ok(nil)
	case r.URL.Path == "/admin/flower-messages" && r.Method == http.MethodGet:
		ok(map[string]interface{}{
			"content":       []interface{}{map[string]interface{}{"id": 7, "content": "보고 싶어요", "createdAt": "2026-10-01", "deleteFlag": "N", "messageType": "FLOWER"}},
			"totalElements": 1, "totalPages": 1, "number": 0, "size": 20,
		})
	case strings.HasPrefix(r.URL.Path, "/admin/flower-messages/") && r.Method == http.MethodPut:
		b.updates.Add(1)
		ok(map[string]interface{}{"id": 7, "content": "수정됨", "deleteFlag": "N", "messageType": "FLOWER"})
	case strings.HasPrefix(r.URL.Path, "/admin/accounts"):
		b.accounts.Add(1)
		ok([]interface{}{})
	default:
		write(404, map[string]interface{}{"success": false, "message": "not found"})
	}
}

func newBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	t.Setenv("GARDEN_UPSTREAM_BASE_URL", srv.URL)
	t.Setenv("GARDEN_SESSION_DIR", t.TempDir())
	t.Setenv("GARDEN_SESSION_SECRET", "cli-test-secret")
	t.Setenv("GARDEN_PASSWORD", "")
	return b
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestLoginWhoamiLogout(t *testing.T) {
	newBackend(t)
	mustRun(t, "login", "-u", "admin1", "-p", "secret")

	out := mustRun(t, "whoami", "-o", "json")
	var v struct {
		User struct {
			AdminID string `json:"adminId"`
		} `json:"user"`
		GradeName    string          `json:"gradeName"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("whoami json: %v\n%s", err, out)
	}
	if v.User.AdminID != "admin1" || v.GradeName != "SUPER_ADMIN" || !v.Capabilities["manage_admins"] {
		t.Fatalf("whoami = %+v", v)
	}

	mustRun(t, "logout")
	if _, err := run(t, "whoami"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("whoami after logout err = %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	newBackend(t)
	_, err := run(t, "login", "-u", "admin1", "-p", "nope")
	if err == nil || !strings.Contains(err.Error(), "비밀번호가 올바르지 않습니다") {
		t.Fatalf("err = %v", err)
	}
	if gardenapi.IsSessionExpired(err) {
		t.Fatal("login failure must not be a session expiry")
	}
	if _, err := run(t, "whoami"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("whoami err = %v", err)
	}
}

func TestFlowersListUsesPersistedCookie(t *testing.T) {
	newBackend(t)
	mustRun(t, "login", "-u", "editor1", "-p", "secret")
	out := mustRun(t, "flowers", "list", "--keyword", "보고")
	if !strings.Contains(out, "보고 싶어요") || !strings.Contains(out, "전체 1건") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestSessionExpiryClearsLocalSession(t *testing.T) {
	b := newBackend(t)
	mustRun(t, "login", "-u", "admin1", "-p", "secret")
	b.expired.Store(true)

	_, err := run(t, "flowers", "list")
	if !gardenapi.IsSessionExpired(err) || !strings.Contains(err.Error(), "gardenctl login") {
		t.Fatalf("err = %v", err)
	}
	if _, err := run(t, "whoami"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("session must be cleared, whoami err = %v", err)
	}
}

func TestFlowerEditRejectsLongContent(t *testing.T) {
	b := newBackend(t)
	mustRun(t, "login", "-u", "admin1", "-p", "secret")

	_, err := run(t, "flowers", "edit", "7", strings.Repeat("꽃", 51))
	if !errors.Is(err, gardenapi.ErrContentTooLong) {
		t.Fatalf("err = %v", err)
	}
	if b.updates.Load() != 0 {
		t.Fatal("no request may be sent for over-long content")
	}
	mustRun(t, "flowers", "edit", "7", strings.Repeat("꽃", 50))
	if b.updates.Load() != 1 {
		t.Fatalf("updates = %d", b.updates.Load())
	}
}

func TestAccountsRequiresManager(t *testing.T) {
	b := newBackend(t)
	mustRun(t, "login", "-u", "editor1", "-p", "secret")
	_, err := run(t, "accounts", "list")
	if err == nil || !strings.Contains(err.Error(), "권한이 없습니다") {
		t.Fatalf("err = %v", err)
	}
	if b.accounts.Load() != 0 {
		t.Fatal("gated command must not reach the backend")
	}

	mustRun(t, "login", "-u", "admin1", "-p", "secret")
	mustRun(t, "accounts", "list")
	if b.accounts.Load() != 1 {
		t.Fatalf("accounts calls = %d", b.accounts.Load())
	}
}

func TestOutputFlagValidated(t *testing.T) {
	newBackend(t)
	if _, err := run(t, "whoami", "-o", "yaml"); err == nil {
		t.Fatal("want error for unknown output format")
	}
}
