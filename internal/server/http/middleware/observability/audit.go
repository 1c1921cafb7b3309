package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"garden-console/internal/domain/model"
	"garden-console/internal/logging"
	"garden-console/internal/mq/kafka"

	"github.com/gin-gonic/gin"
)

const auditBodyLimit = 4096

// 원문을 남길 수 없는 본문 자리 표시
const (
	bodyTruncated = "<truncated>"
	bodyNonJSON   = "<non-json>"
)

// AuditSink kafka.AsyncSender 가 만족한다
type AuditSink interface {
	Enqueue(m kafka.AsyncMessage) bool
}

var sensitiveKeys = map[string]struct{}{
	"adminpwd":           {},
	"password":           {},
	"currentpassword":    {},
	"newpassword":        {},
	"confirmnewpassword": {},
	"temporarypassword":  {},
	"token":              {},
	"authorization":      {},
}

// Audit GET 이외 요청을 감사 이벤트로 발행한다. 큐가 차면 버린다.
func Audit(sink AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil || c.Request.Method == "GET" || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}
		start := time.Now()
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, auditBodyLimit+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}
		recorded := bodyTruncated
		if len(body) <= auditBodyLimit {
			recorded = MaskJSON(body)
		}
		c.Next()
		route := c.FullPath()
		ctx := c.Request.Context()
		ev := model.AuditEvent{
			Action:    actionName(c.Request.Method, route),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Route:     route,
			Status:    c.Writer.Status(),
			AdminID:   logging.AdminID(ctx),
			TraceID:   logging.TraceID(ctx),
			IP:        c.ClientIP(),
			LatencyMS: time.Since(start).Milliseconds(),
			Body:      recorded,
			Time:      time.Now().Format(time.RFC3339),
		}
		b, err := json.Marshal(ev)
		if err != nil {
			return
		}
		sink.Enqueue(kafka.AsyncMessage{
			Ctx:     ctx,
			Key:     []byte(ev.AdminID),
			Value:   b,
			Headers: map[string]string{"trace_id": ev.TraceID, "action": ev.Action},
		})
	}
}

// MaskJSON 민감 키 값은 "***". JSON 으로 읽을 수 없으면 원문 대신 "<non-json>".
func MaskJSON(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	var v interface{}
	if json.Unmarshal(src, &v) != nil {
		return bodyNonJSON
	}
	b, err := json.Marshal(mask(v))
	if err != nil {
		return bodyNonJSON
	}
	return string(b)
}

func mask(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, vv := range val {
			if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
				val[k] = "***"
				continue
			}
			val[k] = mask(vv)
		}
		return val
	case []interface{}:
		for i := range val {
			val[i] = mask(val[i])
		}
		return val
	default:
		return v
	}
}

// actionName "PUT /console/flower-messages/:id" -> "put.flower-messages.id"
func actionName(method, route string) string {
	r := strings.TrimPrefix(route, "/console")
	r = strings.Trim(r, "/")
	if r == "" {
		return strings.ToLower(method)
	}
	r = strings.ReplaceAll(r, ":", "")
	r = strings.ReplaceAll(r, "/", ".")
	return strings.ToLower(method) + "." + r
}
