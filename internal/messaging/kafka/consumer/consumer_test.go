package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aisg-audit/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRefresher struct {
	calls    []events.AuditLifecycleEvent
	err      error
	failures int
}

func (f *fakeRefresher) RefreshManagerAggregation(_ context.Context, e events.AuditLifecycleEvent) error {
	f.calls = append(f.calls, e)
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return f.err
}

var fastRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

type fakeReader struct {
	msgs      []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func eventMessage(t *testing.T, e events.AuditLifecycleEvent) kafkago.Message {
	t.Helper()
	raw, err := json.Marshal(e)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func TestHandleAuditMessage(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("created triggers refresh", func(t *testing.T) {
		r := &fakeRefresher{}
		got := handleAuditMessage(ctx, eventMessage(t, events.AuditLifecycleEvent{
			EventType: events.AuditCreated, EmployeeID: "e1", ManagerID: "m1", Depth: 0,
		}), r, log)

		assert.Equal(t, outcomeHandled, got)
		require.Len(t, r.calls, 1)
		assert.Equal(t, "m1", r.calls[0].ManagerID)
	})

	t.Run("regenerated ignored", func(t *testing.T) {
		r := &fakeRefresher{}
		got := handleAuditMessage(ctx, eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditRegenerated}), r, log)
		assert.Equal(t, outcomeSkipped, got)
		assert.Empty(t, r.calls)
	})

	t.Run("malformed payload skipped", func(t *testing.T) {
		r := &fakeRefresher{}
		got := handleAuditMessage(ctx, kafkago.Message{Value: []byte("{")}, r, log)
		assert.Equal(t, outcomeSkipped, got)
	})

	t.Run("refresh error retried", func(t *testing.T) {
		r := &fakeRefresher{err: errors.New("db down")}
		got := handleAuditMessage(ctx, eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditDeleted}), r, log)
		assert.Equal(t, outcomeRetry, got)
	})
}

func TestConsumeAuditLifecycle(t *testing.T) {
	t.Run("commits handled and skipped messages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
			eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditCreated, EmployeeID: "e1"}),
			eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditRegenerated, EmployeeID: "e2"}),
		}}
		r := &fakeRefresher{}

		ConsumeAuditLifecycle(ctx, reader, r, fastRetry, zap.NewNop())

		assert.Len(t, r.calls, 1)
		assert.Len(t, reader.committed, 2)
	})

	t.Run("transient failure retried before commit", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		first := eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditCreated, EmployeeID: "e1", ManagerID: "m1"})
		first.Offset = 10
		second := eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditDeleted, EmployeeID: "e2", ManagerID: "m1"})
		second.Offset = 11

		reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{first, second}}
		r := &fakeRefresher{failures: 1}

		ConsumeAuditLifecycle(ctx, reader, r, fastRetry, zap.NewNop())

		require.Len(t, r.calls, 3)
		assert.Equal(t, "e1", r.calls[0].EmployeeID)
		assert.Equal(t, "e1", r.calls[1].EmployeeID)
		assert.Equal(t, "e2", r.calls[2].EmployeeID)
		require.Len(t, reader.committed, 2)
		assert.Equal(t, int64(10), reader.committed[0].Offset)
		assert.Equal(t, int64(11), reader.committed[1].Offset)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
			eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditCreated, EmployeeID: "e1"}),
		}}
		r := &fakeRefresher{err: errors.New("db down")}

		ConsumeAuditLifecycle(ctx, reader, r, fastRetry, zap.NewNop())

		assert.Len(t, r.calls, 3)
		assert.Len(t, reader.committed, 1)
	})

	t.Run("cancel during backoff leaves offset uncommitted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
			eventMessage(t, events.AuditLifecycleEvent{EventType: events.AuditCreated, EmployeeID: "e1"}),
		}}
		r := &cancelingRefresher{cancel: cancel}

		ConsumeAuditLifecycle(ctx, reader, r, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}, zap.NewNop())

		assert.Equal(t, 1, r.calls)
		assert.Empty(t, reader.committed)
	})
}

type cancelingRefresher struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelingRefresher) RefreshManagerAggregation(context.Context, events.AuditLifecycleEvent) error {
	c.calls++
	c.cancel()
	return errors.New("shutting down")
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}.withDefaults()

	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Second, p.delay(1))
	assert.Equal(t, 2*time.Second, p.delay(2))
	assert.Equal(t, 4*time.Second, p.delay(3))
	assert.Equal(t, 5*time.Second, p.delay(4))
}
