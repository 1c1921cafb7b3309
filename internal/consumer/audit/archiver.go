// Package audit 콘솔 감사 토픽을 읽어 Postgres console_audit 테이블에 보관한다.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"garden-console/internal/domain/model"
	"garden-console/internal/logging"
	"garden-console/internal/repository/postgres"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const bodyLimit = 2000

// Archiver kafka.Consumer 의 MessageHandler 로 쓴다
type Archiver struct {
	db  *gorm.DB
	log *logging.Logger
}

func NewArchiver(db *gorm.DB, log *logging.Logger) *Archiver {
	if log == nil {
		log = logging.Nop()
	}
	return &Archiver{db: db, log: log}
}

func AutoMigrate(db *gorm.DB) error {
	return postgres.AutoMigrateModels(db, &model.ConsoleAudit{})
}

// Handle 해석할 수 없는 메시지는 건너뛴다. 같은 offset 은 한 번만 저장된다.
func (a *Archiver) Handle(ctx context.Context, m kafkaGo.Message) error {
	row, err := Row(m)
	if err != nil {
		a.log.WithContext(ctx).Warn("audit_event_decode_failed", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Row 메시지를 테이블 행으로 바꾼다
func Row(m kafkaGo.Message) (model.ConsoleAudit, error) {
	var ev model.AuditEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		return model.ConsoleAudit{}, fmt.Errorf("decode audit event: %w", err)
	}
	at, err := time.Parse(time.RFC3339, ev.Time)
	if err != nil {
		at = m.Time
	}
	if at.IsZero() {
		at = time.Now()
	}
	body := ev.Body
	if len(body) > bodyLimit {
		body = body[:bodyLimit]
	}
	return model.ConsoleAudit{
		Action:    ev.Action,
		AdminID:   ev.AdminID,
		Method:    ev.Method,
		Path:      ev.Path,
		Status:    ev.Status,
		LatencyMS: ev.LatencyMS,
		IP:        ev.IP,
		TraceID:   ev.TraceID,
		Body:      body,
		At:        at,
		Partition: m.Partition,
		Offset:    m.Offset,
	}, nil
}
