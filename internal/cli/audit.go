package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	auditarchive "garden-console/internal/consumer/audit"
	"garden-console/internal/domain/model"
	"garden-console/internal/mq/kafka"
	"garden-console/internal/repository/postgres"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAuditCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "콘솔 감사 이벤트 (Kafka)"}
	cmd.AddCommand(newAuditTailCmd(e), newAuditArchiveCmd(e))
	return cmd
}

func (e *env) requireKafka() error {
	if len(e.cfg.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers 가 설정되지 않았습니다 (GARDEN_KAFKA_BROKERS)")
	}
	return nil
}

// untilSignal Ctrl-C 까지 실행한다
func untilSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

func auditLine(ev model.AuditEvent) string {
	who := ev.AdminID
	if who == "" {
		who = "-"
	}
	return fmt.Sprintf("%s %-12s %-40s %d %s %s", ev.Time, who, ev.Action, ev.Status, ev.Method, ev.Path)
}

func newAuditTailCmd(e *env) *cobra.Command {
	var fromStart bool
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "감사 이벤트를 실시간으로 출력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.requireKafka(); err != nil {
				return err
			}
			start := kafkaGo.LastOffset
			if fromStart {
				start = kafkaGo.FirstOffset
			}
			c := kafka.NewConsumer(kafka.ConsumerConfig{Brokers: e.cfg.Kafka.Brokers, Topic: e.cfg.Kafka.AuditTopic, StartOffset: start}, e.log)
			defer c.Close()
			ctx, stop := untilSignal(cmd.Context())
			defer stop()
			return c.Start(ctx, func(_ context.Context, m kafkaGo.Message) error {
				if e.format == "json" {
					_, err := fmt.Fprintln(e.out, string(m.Value))
					return err
				}
				var ev model.AuditEvent
				if err := json.Unmarshal(m.Value, &ev); err != nil {
					return err
				}
				_, err := fmt.Fprintln(e.out, auditLine(ev))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&fromStart, "from-beginning", false, "처음부터 읽는다")
	return cmd
}

func newAuditArchiveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "감사 이벤트를 Postgres console_audit 테이블에 보관한다 (컨슈머 그룹)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.requireKafka(); err != nil {
				return err
			}
			if e.cfg.Postgres.DSN == "" {
				return errors.New("postgres.dsn 이 설정되지 않았습니다 (GARDEN_POSTGRES_DSN)")
			}
			db, err := postgres.New(postgres.Config{DSN: e.cfg.Postgres.DSN, LogLevel: e.cfg.Postgres.LogLevel})
			if err != nil {
				return err
			}
			defer postgres.Close(db)
			if err := auditarchive.AutoMigrate(db); err != nil {
				return err
			}
			c := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:     e.cfg.Kafka.Brokers,
				GroupID:     e.cfg.Kafka.GroupID,
				Topic:       e.cfg.Kafka.AuditTopic,
				StartOffset: kafkaGo.FirstOffset,
			}, e.log)
			defer c.Close()
			ctx, stop := untilSignal(cmd.Context())
			defer stop()
			e.log.Info("audit_archive_started", zap.String("topic", e.cfg.Kafka.AuditTopic), zap.String("group", e.cfg.Kafka.GroupID))
			return c.Start(ctx, auditarchive.NewArchiver(db, e.log).Handle)
		},
	}
}
