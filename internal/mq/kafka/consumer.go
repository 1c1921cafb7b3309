package kafka

import (
	"context"
	"errors"
	"time"

	"garden-console/internal/logging"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers []string
	// GroupID 가 비면 파티션 0 을 직접 읽는다 (tail 용)
	GroupID        string
	Topic          string
	StartOffset    int64
	CommitInterval time.Duration
}

type MessageHandler func(ctx context.Context, msg kafkaGo.Message) error

// Consumer 감사 토픽 구독. 헤더의 trace context 를 이어 받는다.
type Consumer struct {
	reader *kafkaGo.Reader
	logger *logging.Logger
}

func NewConsumer(cfg ConsumerConfig, l *logging.Logger) *Consumer {
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = time.Second
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = kafkaGo.LastOffset
	}
	if l == nil {
		l = logging.Nop()
	}
	rc := kafkaGo.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10 << 20,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    cfg.StartOffset,
	}
	return &Consumer{reader: kafkaGo.NewReader(rc), logger: l}
}

// Start ctx 가 취소될 때까지 읽는다. handler 오류는 기록만 하고 계속 읽는다.
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("kafka: nil reader")
	}
	prop := otel.GetTextMapPropagator()
	tracer := otel.Tracer("kafka-consumer")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		carrier := propagation.MapCarrier{}
		for _, h := range m.Headers {
			carrier[h.Key] = string(h.Value)
		}
		msgCtx := prop.Extract(ctx, carrier)
		if v := carrier["trace_id"]; v != "" {
			msgCtx = logging.WithTraceID(msgCtx, v)
		}
		attrs := []attribute.KeyValue{
			semconv.MessagingSystem("kafka"),
			semconv.MessagingDestinationName(m.Topic),
			attribute.Int("messaging.kafka.partition", m.Partition),
			attribute.Int64("messaging.kafka.offset", m.Offset),
		}
		msgCtx, span := tracer.Start(msgCtx, "kafka.consume", trace.WithSpanKind(trace.SpanKindConsumer), trace.WithAttributes(attrs...))
		if err := handler(msgCtx, m); err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			c.logger.WithContext(msgCtx).Warn("kafka_consume_handler_failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
		span.End()
	}
}

func (c *Consumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
