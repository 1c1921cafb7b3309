package boot

import (
	"context"
	"fmt"

	"garden-console/internal/logging"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger cron 내부 로그를 zap 으로 보낸다
type cronLogger struct{ l *logging.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug("cron_"+msg, zap.String("kv", fmt.Sprint(kv...)))
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error("cron_"+msg, zap.Error(err), zap.String("kv", fmt.Sprint(kv...)))
}

// Janitor 주기 정리 작업. 이전 실행이 끝나지 않았으면 건너뛴다.
type Janitor struct {
	cron *cron.Cron
	log  *logging.Logger
}

func NewJanitor(l *logging.Logger) *Janitor {
	cl := cronLogger{l: l}
	return &Janitor{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:  l,
	}
}

// Every schedule 은 "@every 10m" 형식
func (j *Janitor) Every(name, schedule string, fn func(context.Context)) error {
	_, err := j.cron.AddFunc(schedule, func() { fn(context.Background()) })
	if err != nil {
		return fmt.Errorf("janitor %s: %w", name, err)
	}
	j.log.Info("janitor_job_registered", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop 실행 중인 작업이 끝날 때까지 ctx 만큼 기다린다
func (j *Janitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}
