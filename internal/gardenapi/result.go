package gardenapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Kind 호출 결과 분류. HTTP 계층은 분류만 하고, 화면 이동 등 대응은 호출자가 결정한다.
type Kind int

const (
	KindOK Kind = iota
	KindSessionExpired
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindSessionExpired:
		return "session_expired"
	default:
		return "error"
	}
}

var (
	ErrSessionExpired   = errors.New("gardenapi: session expired")
	ErrContentEmpty     = errors.New("gardenapi: message content is empty")
	ErrContentTooLong   = errors.New("gardenapi: flower message content exceeds 50 characters")
	ErrPasswordMismatch = errors.New("gardenapi: new password and confirmation differ")
)

// ApiError 2xx 가 아닌 응답 또는 success=false envelope
type ApiError struct {
	Status  int
	Code    int
	Message string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("gardenapi: %d %s", e.Status, e.Message)
}

// IsSessionExpired 세션 만료로 강제 재인증이 필요한 오류인지
func IsSessionExpired(err error) bool { return errors.Is(err, ErrSessionExpired) }

// AsApiError errors.As 래퍼
func AsApiError(err error) (*ApiError, bool) {
	var ae *ApiError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Result 단일 HTTP 호출의 태그 결과 (Ok | SessionExpired | Error(status, message))
type Result struct {
	Kind        Kind
	Status      int
	Message     string
	ContentType string
	Header      http.Header
	Body        []byte
}

// Err KindOK 이면 nil
func (r *Result) Err() error {
	switch r.Kind {
	case KindOK:
		return nil
	case KindSessionExpired:
		return ErrSessionExpired
	default:
		return &ApiError{Status: r.Status, Message: r.Message}
	}
}

func (r *Result) IsJSON() bool {
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.Contains(r.ContentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Text JSON 이 아닌 응답 본문
func (r *Result) Text() string { return string(r.Body) }

var sessionKeywords = []string{"세션", "만료", "session", "expired"}

// classify 상태 코드와 본문으로 결과를 분류한다.
// 401 은 본문이 없거나 메시지에 세션 관련 키워드가 있을 때만 세션 만료로 본다.
func classify(status int, contentType string, body []byte, sessionCheck bool) *Result {
	r := &Result{Status: status, ContentType: contentType, Body: body}
	if status >= 200 && status < 300 {
		r.Kind = KindOK
		return r
	}
	msg, ok := errorMessage(body)
	if !ok {
		msg = fallbackMessage(status)
	}
	r.Message = msg
	r.Kind = KindFailed
	if status == http.StatusUnauthorized && sessionCheck {
		if !ok || hasSessionKeyword(msg) {
			r.Kind = KindSessionExpired
		}
	}
	return r
}

func errorMessage(body []byte) (string, bool) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", false
	}
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", false
	}
	switch {
	case env.Message != "":
		return env.Message, true
	case env.Error != "":
		return env.Error, true
	}
	return "", false
}

func fallbackMessage(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return fmt.Sprintf("API Error: %d", status)
	}
	return fmt.Sprintf("API Error: %d %s", status, text)
}

func hasSessionKeyword(msg string) bool {
	lower := strings.ToLower(msg)
	for _, k := range sessionKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
