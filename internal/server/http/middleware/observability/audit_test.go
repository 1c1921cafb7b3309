package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"garden-console/internal/domain/model"
	"garden-console/internal/mq/kafka"

	"github.com/gin-gonic/gin"
)

type memSink struct {
	mu   sync.Mutex
	msgs []kafka.AsyncMessage
}

func (s *memSink) Enqueue(m kafka.AsyncMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return true
}

func TestMaskJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "로그인 비밀번호", in: `{"adminId":"admin1","adminPwd":"secret"}`, want: `{"adminId":"admin1","adminPwd":"***"}`},
		{name: "비밀번호 변경", in: `{"currentPassword":"a","newPassword":"b","confirmNewPassword":"b"}`, want: `{"confirmNewPassword":"***","currentPassword":"***","newPassword":"***"}`},
		{name: "중첩", in: `{"items":[{"password":"x","n":1}]}`, want: `{"items":[{"n":1,"password":"***"}]}`},
		{name: "JSON 아님", in: `adminPwd=secret`, want: `<non-json>`},
		{name: "잘린 JSON", in: `{"adminPwd":"secret","adminId":"adm`, want: `<non-json>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskJSON([]byte(tt.in)); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAuditPublishesMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &memSink{}
	r := gin.New()
	r.Use(Trace(), Audit(sink))
	r.GET("/console/flower-messages", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/console/flower-messages/:id", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		if body["content"] != "안녕" {
			t.Errorf("handler body = %v", body)
		}
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/console/flower-messages", nil))
	req := httptest.NewRequest(http.MethodPut, "/console/flower-messages/7", strings.NewReader(`{"content":"안녕"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if len(sink.msgs) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.msgs))
	}
	var ev model.AuditEvent
	if err := json.Unmarshal(sink.msgs[0].Value, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Action != "put.flower-messages.id" || ev.Status != 200 || ev.TraceID == "" {
		t.Fatalf("event = %+v", ev)
	}
	if sink.msgs[0].Headers["action"] != ev.Action {
		t.Fatalf("headers = %v", sink.msgs[0].Headers)
	}
}

func TestAuditNeverPublishesOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &memSink{}
	r := gin.New()
	r.Use(Audit(sink))
	var seen int
	r.POST("/console/auth/login", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			t.Errorf("handler bind: %v", err)
		}
		seen = len(body["adminId"])
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name     string
		idLen    int
		wantBody string
	}{
		{name: "한도 초과", idLen: 5000, wantBody: bodyTruncated},
		{name: "한도 안", idLen: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink.msgs = nil
			id := strings.Repeat("a", tt.idLen)
			req := httptest.NewRequest(http.MethodPost, "/console/auth/login", strings.NewReader(`{"adminPwd":"TopSecret123","adminId":"`+id+`"}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(httptest.NewRecorder(), req)

			if seen != tt.idLen {
				t.Fatalf("handler saw adminId of %d bytes, want %d", seen, tt.idLen)
			}
			if len(sink.msgs) != 1 {
				t.Fatalf("events = %d", len(sink.msgs))
			}
			if strings.Contains(string(sink.msgs[0].Value), "TopSecret123") {
				t.Fatal("audit event carries the password")
			}
			var ev model.AuditEvent
			if err := json.Unmarshal(sink.msgs[0].Value, &ev); err != nil {
				t.Fatal(err)
			}
			if tt.wantBody != "" && ev.Body != tt.wantBody {
				t.Fatalf("body = %q, want %q", ev.Body, tt.wantBody)
			}
			if tt.wantBody == "" && !strings.Contains(ev.Body, `"adminPwd":"***"`) {
				t.Fatalf("body = %q", ev.Body)
			}
		})
	}
}
