package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/availability/libs/kafkax"
	otelx "github.com/md-rashed-zaman/availability/libs/otel"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/calc"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ResultEventType = "availability.computed.v1"

	KindPeriods  = "periods"
	KindSessions = "sessions"

	maxAttempts = 3
)

type Calculator interface {
	Periods(ctx context.Context, req calc.Request) (calc.PeriodsResponse, error)
	Sessions(ctx context.Context, req calc.Request) (calc.SessionsResponse, error)
}

// Job is the payload consumed from the request topic.
type Job struct {
	Kind string `json:"kind"`
	calc.Request
}

// Result is the payload published to the result topic. Exactly one of Periods, Sessions
// or Error is set.
type Result struct {
	RequestID string                 `json:"request_id"`
	Kind      string                 `json:"kind"`
	Periods   *calc.PeriodsResponse  `json:"periods,omitempty"`
	Sessions  *calc.SessionsResponse `json:"sessions,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type Config struct {
	Brokers      string
	GroupID      string
	RequestTopic string
	ResultTopic  string
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Worker answers availability jobs from Kafka. Invalid jobs get an error result and are
// not retried.
type Worker struct {
	reader     messageReader
	writer     messageWriter
	calc       Calculator
	logger     *slog.Logger
	retryDelay time.Duration
}

func New(logger *slog.Logger, c Calculator, cfg Config) *Worker {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.RequestTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.ResultTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Worker{reader: reader, writer: writer, calc: c, logger: logger, retryDelay: time.Second}
}

func (w *Worker) Run(ctx context.Context) {
	defer func() {
		_ = w.reader.Close()
		_ = w.writer.Close()
	}()

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("kafka read error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}
		if !w.deliver(ctx, msg) {
			return
		}
	}
}

// deliver processes msg, retrying failures up to maxAttempts, then commits its offset.
// When ctx ends first the offset stays uncommitted and the job is redelivered. It reports
// whether the worker should keep running.
func (w *Worker) deliver(ctx context.Context, msg kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		err := w.process(ctx, msg)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		w.logger.Error("availability job failed", "err", err, "topic", msg.Topic, "offset", msg.Offset, "attempt", attempt)
		if attempt >= maxAttempts {
			w.logger.Error("availability job dropped", "topic", msg.Topic, "offset", msg.Offset)
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.retryDelay):
		}
	}
	if err := w.reader.CommitMessages(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return false
		}
		w.logger.Error("kafka commit failed", "err", err, "topic", msg.Topic, "offset", msg.Offset)
	}
	return true
}

func (w *Worker) process(ctx context.Context, msg kafka.Message) (err error) {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otelx.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer func() { otelx.EndSpan(span, err) }()

	out, err := w.Handle(ctxSpan, msg)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctxSpan, out)
}

// Handle computes the result message for one job message.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) (kafka.Message, error) {
	meta := kafkax.ExtractEventMeta(msg)
	res := Result{RequestID: meta.EventID}

	var job Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		res.Error = "invalid job payload"
	} else {
		res.Kind = job.Kind
		if err := w.compute(ctx, job, &res); err != nil {
			if !errors.Is(err, calc.ErrInvalidRequest) {
				return kafka.Message{}, err
			}
			res.Error = err.Error()
		}
	}
	if res.Error != "" {
		w.logger.Warn("availability job rejected", "event_id", meta.EventID, "err", res.Error)
	}

	body, err := json.Marshal(res)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     msg.Key,
		Value:   body,
		Headers: kafkax.InjectTraceHeaders(ctx, kafkax.NewEventHeaders(ResultEventType)),
	}, nil
}

func (w *Worker) compute(ctx context.Context, job Job, res *Result) error {
	switch job.Kind {
	case KindPeriods:
		resp, err := w.calc.Periods(ctx, job.Request)
		if err != nil {
			return err
		}
		res.Periods = &resp
	case KindSessions:
		resp, err := w.calc.Sessions(ctx, job.Request)
		if err != nil {
			return err
		}
		res.Sessions = &resp
	default:
		return fmt.Errorf("%w: unknown kind %q", calc.ErrInvalidRequest, job.Kind)
	}
	return nil
}
