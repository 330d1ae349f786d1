package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/contractor-ledger/internal/worker/domain"
)

type settlement struct {
	acked   bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	settled map[uint64]settlement
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{settled: map[uint64]settlement{}}
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled[tag] = settlement{acked: true}
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled[tag] = settlement{requeue: requeue}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) get(tag uint64) (settlement, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.settled[tag]
	return s, ok
}

type fakeBroker struct {
	deliveries chan amqp.Delivery
	qosErr     error
	prefetch   int
	tag        string
}

func (b *fakeBroker) Qos(prefetchCount int) error {
	b.prefetch = prefetchCount
	return b.qosErr
}

func (b *fakeBroker) Consume(consumerTag string) (<-chan amqp.Delivery, error) {
	b.tag = consumerTag
	return b.deliveries, nil
}

type fakeEventStore struct {
	mu       sync.Mutex
	recorded map[uuid.UUID]*domain.LedgerEvent
	err      error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{recorded: map[uuid.UUID]*domain.LedgerEvent{}}
}

func (s *fakeEventStore) RecordEvent(_ context.Context, event *domain.LedgerEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.recorded[event.EventID]; ok {
		return false, nil
	}
	s.recorded[event.EventID] = event
	return true, nil
}

func (s *fakeEventStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recorded)
}

func depositBody(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{"event_id":%q,"type":"ledger.deposit.completed","client_id":1,"amount":40,"balance_after":140,"occurred_at":"2020-08-15T19:11:26Z"}`, id))
}

func newTestWorker(broker Broker, store EventStore) *Worker {
	return NewWorker(&Config{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Broker:        broker,
		Store:         store,
		WorkerID:      "ledger-worker-test",
		QueueName:     "ledger_events_audit",
		Concurrency:   3,
		PrefetchCount: 10,
		EventTimeout:  time.Second,
	})
}

func runUntilDrained(t *testing.T, w *Worker) {
	t.Helper()
	require.NoError(t, w.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
}

func TestWorker_RecordsAndSettles(t *testing.T) {
	ack := newFakeAcknowledger()
	first, second := uuid.New(), uuid.New()

	deliveries := make(chan amqp.Delivery, 4)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: depositBody(first)}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`{not json`)}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: depositBody(second)}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 4, Body: depositBody(first), Redelivered: true}
	close(deliveries)

	broker := &fakeBroker{deliveries: deliveries}
	store := newFakeEventStore()
	w := newTestWorker(broker, store)

	runUntilDrained(t, w)

	assert.Equal(t, 10, broker.prefetch)
	assert.Equal(t, "ledger-worker-test", broker.tag)
	assert.Equal(t, 2, store.count())

	for _, tag := range []uint64{1, 3, 4} {
		s, ok := ack.get(tag)
		require.True(t, ok, "delivery %d not settled", tag)
		assert.True(t, s.acked, "delivery %d should be acked", tag)
	}

	malformed, ok := ack.get(2)
	require.True(t, ok)
	assert.False(t, malformed.acked)
	assert.False(t, malformed.requeue)
}

func TestWorker_StoreFailureRequeuesOnce(t *testing.T) {
	ack := newFakeAcknowledger()

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: depositBody(uuid.New())}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: depositBody(uuid.New()), Redelivered: true}
	close(deliveries)

	store := newFakeEventStore()
	store.err = errors.New("connection refused")
	w := newTestWorker(&fakeBroker{deliveries: deliveries}, store)

	runUntilDrained(t, w)

	fresh, ok := ack.get(1)
	require.True(t, ok)
	assert.False(t, fresh.acked)
	assert.True(t, fresh.requeue)

	redelivered, ok := ack.get(2)
	require.True(t, ok)
	assert.False(t, redelivered.acked)
	assert.False(t, redelivered.requeue)
}

func TestWorker_QosFailure(t *testing.T) {
	w := newTestWorker(&fakeBroker{qosErr: errors.New("channel closed")}, newFakeEventStore())
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set QoS")
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	deliveries := make(chan amqp.Delivery)
	w := newTestWorker(&fakeBroker{deliveries: deliveries}, newFakeEventStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, w.Stop(stopCtx))
}

func TestShouldRequeue(t *testing.T) {
	transient := domain.NewRetryableError(errors.New("timeout"))

	tests := []struct {
		name        string
		err         error
		redelivered bool
		want        bool
	}{
		{name: "transient first delivery", err: transient, want: true},
		{name: "transient redelivery", err: transient, redelivered: true, want: false},
		{name: "invalid event", err: domain.ErrInvalidEvent, want: false},
		{name: "unknown error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRequeue(tt.err, tt.redelivered))
		})
	}
}
