package logging

import (
	"context"

	"go.uber.org/zap"
)

type Logger struct {
	*zap.Logger
}

type ctxKey string

const (
	traceIDKey ctxKey = "trace_id"
	adminIDKey ctxKey = "admin_id"
)

func New(level, format string) (*Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{lg}, nil
}

// Nop 테스트/CLI 용
func Nop() *Logger { return &Logger{zap.NewNop()} }

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func WithAdminID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, adminIDKey, id)
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(traceIDKey).(string)
	return s
}

func AdminID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(adminIDKey).(string)
	return s
}

// WithContext 요청 컨텍스트의 trace_id / admin_id 를 필드로 붙인다.
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.Logger
	}
	fields := make([]zap.Field, 0, 2)
	if s := TraceID(ctx); s != "" {
		fields = append(fields, zap.String("trace_id", s))
	}
	if s := AdminID(ctx); s != "" {
		fields = append(fields, zap.String("admin_id", s))
	}
	if len(fields) == 0 {
		return l.Logger
	}
	return l.Logger.With(fields...)
}
