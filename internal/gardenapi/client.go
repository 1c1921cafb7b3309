// Package gardenapi 추모의 정원 백엔드 호출의 단일 관문.
// 모든 요청은 쿠키(자격 증명)를 포함하고 JSON 으로 주고받는다.
package gardenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"garden-console/internal/metrics"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxBodyBytes = 32 << 20

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Transport 미지정 시 http.DefaultTransport
	Transport http.RoundTripper
}

type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	validate  *validator.Validate
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gardenapi: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gardenapi: base url %q must be absolute", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	tr := opts.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout, Transport: tr, Jar: jar},
		userAgent: opts.UserAgent,
		validate:  validator.New(),
	}, nil
}

// ForSession 같은 설정, 별도의 쿠키 저장소를 가진 클라이언트. 콘솔 세션마다 하나씩 쓴다.
func (c *Client) ForSession(cookies []*http.Cookie) *Client {
	jar, _ := cookiejar.New(nil)
	cp := *c
	hc := *c.http
	hc.Jar = jar
	cp.http = &hc
	cp.SetCookies(cookies)
	return &cp
}

// Cookies 백엔드가 내려준 현재 쿠키 (이름/값만)
func (c *Client) Cookies() []*http.Cookie {
	if c.http.Jar == nil {
		return nil
	}
	return c.http.Jar.Cookies(c.base)
}

func (c *Client) SetCookies(cookies []*http.Cookie) {
	if c.http.Jar == nil || len(cookies) == 0 {
		return
	}
	c.http.Jar.SetCookies(c.base, cookies)
}

func (c *Client) BaseURL() string { return c.base.String() }

// Call 요청 명세. Header 는 기본 헤더 위에 병합된다.
type Call struct {
	Op     string
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Header http.Header
	// SkipSessionCheck 로그인처럼 401 이 세션 만료를 뜻하지 않는 호출
	SkipSessionCheck bool
}

// Request 백엔드 호출. 전송 실패만 error 로 반환하고, HTTP 수준 결과는 Result 로 분류한다.
func (c *Client) Request(ctx context.Context, call Call) (*Result, error) {
	op := call.Op
	if op == "" {
		op = call.Method + " " + call.Path
	}
	ctx, span := otel.Tracer("garden-upstream").Start(ctx, "upstream."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.method", call.Method), attribute.String("http.route", call.Path)))
	defer span.End()
	start := time.Now()
	defer func() { metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds()) }()

	req, err := c.newRequest(ctx, call)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamTotal.WithLabelValues(op, "transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("gardenapi: %s: %w", op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamTotal.WithLabelValues(op, "transport").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("gardenapi: %s: read body: %w", op, err)
	}
	res := classify(resp.StatusCode, resp.Header.Get("Content-Type"), body, !call.SkipSessionCheck)
	res.Header = resp.Header
	metrics.UpstreamTotal.WithLabelValues(op, res.Kind.String()).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if res.Kind != KindOK {
		span.SetStatus(codes.Error, res.Message)
	}
	return res, nil
}

func (c *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(call.Path, "/")
	if len(call.Query) > 0 {
		u.RawQuery = call.Query.Encode()
	}
	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("gardenapi: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range call.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

// do 호출 후 envelope 의 data 를 out 에 디코딩한다. out 이 nil 이면 성공 여부만 본다.
func (c *Client) do(ctx context.Context, call Call, out interface{}) error {
	res, err := c.Request(ctx, call)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	return decodeEnvelope(res, out)
}

func decodeEnvelope(res *Result, out interface{}) error {
	if len(bytes.TrimSpace(res.Body)) == 0 {
		return nil
	}
	if !res.IsJSON() {
		if out == nil {
			return nil
		}
		if s, ok := out.(*string); ok {
			*s = res.Text()
			return nil
		}
		return &ApiError{Status: res.Status, Message: "unexpected content type " + res.ContentType}
	}
	var env struct {
		Success *bool           `json:"success"`
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return fmt.Errorf("gardenapi: decode envelope: %w", err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = fallbackMessage(res.Status)
		}
		return &ApiError{Status: res.Status, Code: env.Code, Message: msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("gardenapi: decode data: %w", err)
	}
	return nil
}

// validationError validator 오류를 ApiError(400) 로 감싼다.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ApiError{Status: http.StatusBadRequest, Message: fmt.Sprintf("invalid field %s (%s)", verrs[0].Field(), verrs[0].Tag())}
	}
	return &ApiError{Status: http.StatusBadRequest, Message: err.Error()}
}
