package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/availability/libs/kafkax"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/calc"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs     []kafka.Message
	failures int
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("leader not available")
	}
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureWriter) Close() error { return nil }

func newTestWorker(c Calculator) (*Worker, *captureWriter) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c == nil {
		c = calc.New(logger, nil, calc.Options{})
	}
	cw := &captureWriter{}
	return &Worker{writer: cw, calc: c, logger: logger}, cw
}

func jobMessage(t *testing.T, v any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return kafka.Message{
		Topic:   "availability.requested.v1",
		Key:     []byte("staff-1"),
		Value:   b,
		Headers: []kafka.Header{{Key: kafkax.HeaderEventID, Value: []byte("evt-1")}},
	}
}

func decodeResult(t *testing.T, msg kafka.Message) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(msg.Value, &res))
	return res
}

func TestProcessSessionsJob(t *testing.T) {
	w, cw := newTestWorker(nil)
	msg := jobMessage(t, Job{Kind: KindSessions, Request: calc.Request{
		Available: [][2]string{{"2019-01-01 11:00:00", "2019-01-01 12:00:00"}},
		Interval:  "15 minutes",
	}})

	require.NoError(t, w.process(context.Background(), msg))
	require.Len(t, cw.msgs, 1)

	out := cw.msgs[0]
	assert.Equal(t, []byte("staff-1"), out.Key)
	assert.Equal(t, ResultEventType, kafkax.HeaderValue(out.Headers, kafkax.HeaderEventType))

	res := decodeResult(t, out)
	assert.Equal(t, "evt-1", res.RequestID)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.Sessions)
	assert.Len(t, res.Sessions.Sessions, 4)
	assert.Nil(t, res.Periods)
}

func TestHandlePeriodsJob(t *testing.T) {
	w, _ := newTestWorker(nil)
	out, err := w.Handle(context.Background(), jobMessage(t, Job{Kind: KindPeriods, Request: calc.Request{
		Available:   [][2]string{{"2019-01-01 10:00:00", "2019-01-01 12:00:00"}},
		Unavailable: [][2]string{{"2019-01-01 09:45:00", "2019-01-01 12:15:00"}},
	}}))
	require.NoError(t, err)

	res := decodeResult(t, out)
	require.NotNil(t, res.Periods)
	assert.Empty(t, res.Periods.Periods)
}

func TestHandleRejectsInvalidJobs(t *testing.T) {
	w, _ := newTestWorker(nil)

	out, err := w.Handle(context.Background(), kafka.Message{Value: []byte("not json")})
	require.NoError(t, err)
	assert.Equal(t, "invalid job payload", decodeResult(t, out).Error)

	out, err = w.Handle(context.Background(), jobMessage(t, Job{Kind: "forecast"}))
	require.NoError(t, err)
	assert.Contains(t, decodeResult(t, out).Error, `unknown kind "forecast"`)

	out, err = w.Handle(context.Background(), jobMessage(t, Job{Kind: KindPeriods, Request: calc.Request{
		Available: [][2]string{{"2019-01-01 12:00:00", "2019-01-01 11:00:00"}},
	}}))
	require.NoError(t, err)
	assert.Contains(t, decodeResult(t, out).Error, "range start is after end")
}

type failingCalculator struct{}

func (failingCalculator) Periods(context.Context, calc.Request) (calc.PeriodsResponse, error) {
	return calc.PeriodsResponse{}, errors.New("boom")
}

func (failingCalculator) Sessions(context.Context, calc.Request) (calc.SessionsResponse, error) {
	return calc.SessionsResponse{}, errors.New("boom")
}

func TestProcessSurfacesInternalErrors(t *testing.T) {
	w, cw := newTestWorker(failingCalculator{})
	err := w.process(context.Background(), jobMessage(t, Job{Kind: KindPeriods}))
	assert.EqualError(t, err, "boom")
	assert.Empty(t, cw.msgs)
}

// queueReader hands out queued messages, then blocks until the context ends.
type queueReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (q *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	q.mu.Lock()
	if len(q.queue) > 0 {
		msg := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		return msg, nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (q *queueReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.committed = append(q.committed, msgs...)
	return nil
}

func (q *queueReader) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

func (q *queueReader) commits() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.committed)
}

type countingCalculator struct {
	failingCalculator
	calls int
}

func (c *countingCalculator) Periods(ctx context.Context, req calc.Request) (calc.PeriodsResponse, error) {
	c.calls++
	return c.failingCalculator.Periods(ctx, req)
}

func TestDeliverCommitsAfterWrite(t *testing.T) {
	w, cw := newTestWorker(nil)
	qr := &queueReader{}
	w.reader = qr

	msg := jobMessage(t, Job{Kind: KindPeriods, Request: calc.Request{
		Available: [][2]string{{"2019-01-01 10:00:00", "2019-01-01 12:00:00"}},
	}})
	msg.Offset = 7
	require.True(t, w.deliver(context.Background(), msg))
	require.Len(t, cw.msgs, 1)
	require.Len(t, qr.committed, 1)
	assert.Equal(t, int64(7), qr.committed[0].Offset)
}

func TestDeliverRetriesFailedWrites(t *testing.T) {
	w, cw := newTestWorker(nil)
	qr := &queueReader{}
	w.reader = qr
	cw.failures = 2

	require.True(t, w.deliver(context.Background(), jobMessage(t, Job{Kind: KindPeriods})))
	assert.Len(t, cw.msgs, 1)
	assert.Len(t, qr.committed, 1)
}

func TestDeliverDropsJobAfterMaxAttempts(t *testing.T) {
	cc := &countingCalculator{}
	w, cw := newTestWorker(cc)
	qr := &queueReader{}
	w.reader = qr

	require.True(t, w.deliver(context.Background(), jobMessage(t, Job{Kind: KindPeriods})))
	assert.Equal(t, maxAttempts, cc.calls)
	assert.Empty(t, cw.msgs)
	assert.Len(t, qr.committed, 1)
}

func TestDeliverLeavesOffsetWhenCancelled(t *testing.T) {
	cc := &countingCalculator{}
	w, _ := newTestWorker(cc)
	qr := &queueReader{}
	w.reader = qr

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, w.deliver(ctx, jobMessage(t, Job{Kind: KindPeriods})))
	assert.Equal(t, 1, cc.calls)
	assert.Empty(t, qr.committed)
}

func TestRunCommitsAndCloses(t *testing.T) {
	w, cw := newTestWorker(nil)
	qr := &queueReader{queue: []kafka.Message{
		jobMessage(t, Job{Kind: KindPeriods}),
		jobMessage(t, Job{Kind: "forecast"}),
	}}
	w.reader = qr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return qr.commits() == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Len(t, cw.msgs, 2)
	assert.True(t, qr.closed)
}
