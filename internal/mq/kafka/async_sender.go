package kafka

import (
	"context"
	"sync"
	"time"

	"garden-console/internal/logging"
	"garden-console/internal/metrics"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AsyncMessage 큐에 들어가는 단위. Ctx 는 trace 연결에만 쓰인다.
type AsyncMessage struct {
	Ctx       context.Context
	Key       []byte
	Value     []byte
	Headers   map[string]string
	EnqueueAt time.Time
}

// Writer 배치 쓰기. *Producer 가 만족하며 테스트에서 바꿔 끼운다.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
}

// AsyncSender 유한 큐 + 배치 발행. maxBatch 에 도달하거나 maxWait 가 지나면 flush 한다.
// 큐가 가득 차면 버린다(요청 경로를 막지 않는다).
type AsyncSender struct {
	producer *Producer
	writer   Writer
	logger   *logging.Logger
	queue    chan AsyncMessage
	workers  int
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once

	maxBatch int
	maxWait  time.Duration
}

func NewAsyncSender(p *Producer, l *logging.Logger, queueSize, workers, maxBatch int, maxWait time.Duration) *AsyncSender {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if workers <= 0 {
		workers = 1
	}
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if maxWait <= 0 {
		maxWait = 20 * time.Millisecond
	}
	if l == nil {
		l = logging.Nop()
	}
	s := &AsyncSender{
		producer: p,
		logger:   l,
		queue:    make(chan AsyncMessage, queueSize),
		workers:  workers,
		stopCh:   make(chan struct{}),
		maxBatch: maxBatch,
		maxWait:  maxWait,
	}
	if p != nil {
		s.writer = p.Writer
	}
	return s
}

func (s *AsyncSender) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.run()
	}
}

func (s *AsyncSender) run() {
	defer s.wg.Done()
	batch := make([]AsyncMessage, 0, s.maxBatch)
	timer := time.NewTimer(s.maxWait)
	if !timer.Stop() {
		<-timer.C
	}
	var timerCh <-chan time.Time
	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		s.flush(batch, reason)
		batch = batch[:0]
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerCh = nil
	}
	for {
		select {
		case <-s.stopCh:
			// 남은 큐를 비운다
			for {
				select {
				case msg := <-s.queue:
					metrics.AuditQueueDepth.Dec()
					batch = append(batch, msg)
					if len(batch) >= s.maxBatch {
						flush("shutdown")
					}
				default:
					flush("shutdown")
					return
				}
			}
		case msg := <-s.queue:
			metrics.AuditQueueDepth.Dec()
			batch = append(batch, msg)
			if len(batch) == 1 {
				timer.Reset(s.maxWait)
				timerCh = timer.C
			}
			if len(batch) >= s.maxBatch {
				flush("size")
			}
		case <-timerCh:
			timerCh = nil
			flush("timeout")
		}
	}
}

func (s *AsyncSender) flush(batch []AsyncMessage, reason string) {
	msgs := make([]kafkaGo.Message, 0, len(batch))
	spans := make([]trace.Span, 0, len(batch))
	for _, m := range batch {
		ctx := m.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		var hs []kafkaGo.Header
		if s.producer != nil {
			var span trace.Span
			ctx, span = s.producer.startSpan(ctx)
			spans = append(spans, span)
			hs = s.producer.injectHeaders(ctx, toHeaders(m.Headers))
		} else {
			hs = toHeaders(m.Headers)
		}
		msgs = append(msgs, kafkaGo.Message{Key: m.Key, Value: m.Value, Time: time.Now(), Headers: hs})
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err := s.writer.WriteMessages(writeCtx, msgs...)
	cancel()
	for _, sp := range spans {
		if err != nil {
			sp.SetStatus(codes.Error, err.Error())
			sp.RecordError(err)
		}
		sp.End()
	}
	metrics.AuditFlushTotal.WithLabelValues(reason).Inc()
	if err != nil {
		metrics.AuditErrors.Add(float64(len(batch)))
		s.logger.Warn("audit_kafka_flush_failed", zap.String("reason", reason), zap.Int("size", len(batch)), zap.Error(err))
	}
}

// Enqueue 논블로킹. 가득 차면 false.
func (s *AsyncSender) Enqueue(m AsyncMessage) bool {
	if m.EnqueueAt.IsZero() {
		m.EnqueueAt = time.Now()
	}
	select {
	case <-s.stopCh:
		metrics.AuditEnqueue.WithLabelValues("dropped").Inc()
		return false
	default:
	}
	select {
	case s.queue <- m:
		metrics.AuditEnqueue.WithLabelValues("ok").Inc()
		metrics.AuditQueueDepth.Inc()
		return true
	default:
		metrics.AuditEnqueue.WithLabelValues("dropped").Inc()
		return false
	}
}

// Close worker 를 멈추고 남은 메시지를 flush 한다. ctx 가 먼저 끝나면 기다리지 않는다.
func (s *AsyncSender) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
