package mq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeAcker записывает ack/nack решения consumer'а.
type fakeAcker struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcker) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func orderPendingBody(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	return []byte(`{"id":"m1","type":"order.pending","payload":{"submission_id":"` + id.String() + `"}}`)
}

func TestDecodeOrderPending(t *testing.T) {
	id := uuid.New()

	got, err := decodeOrderPending(orderPendingBody(t, id))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Errorf("expected submission id %s, got %s", id, got)
	}
}

func TestDecodeOrderPending_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"wrong type", `{"type":"order.completed","payload":{"submission_id":"` + uuid.New().String() + `"}}`},
		{"missing submission id", `{"type":"order.pending","payload":{}}`},
	}

	for _, tt := range tests {
		if _, err := decodeOrderPending([]byte(tt.body)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	id := uuid.New()
	var handled uuid.UUID

	c := &Consumer{
		logger: testLogger(),
		handler: func(ctx context.Context, submissionID uuid.UUID) error {
			handled = submissionID
			return nil
		},
	}

	acker := &fakeAcker{}
	c.handleDelivery(context.Background(), amqp.Delivery{
		Acknowledger: acker,
		Body:         orderPendingBody(t, id),
	})

	if handled != id {
		t.Errorf("expected handler called with %s, got %s", id, handled)
	}
	if !acker.acked {
		t.Error("expected message to be acked")
	}
	if acker.nacked {
		t.Error("message must not be nacked on success")
	}
}

func TestHandleDelivery_RequeuesOnHandlerError(t *testing.T) {
	c := &Consumer{
		logger: testLogger(),
		handler: func(ctx context.Context, submissionID uuid.UUID) error {
			return errors.New("transient failure")
		},
	}

	acker := &fakeAcker{}
	c.handleDelivery(context.Background(), amqp.Delivery{
		Acknowledger: acker,
		Body:         orderPendingBody(t, uuid.New()),
	})

	if !acker.nacked || !acker.requeue {
		t.Errorf("expected nack with requeue, got nacked=%v requeue=%v", acker.nacked, acker.requeue)
	}
}

func TestHandleDelivery_PoisonGoesToDLQ(t *testing.T) {
	c := &Consumer{
		logger: testLogger(),
		handler: func(ctx context.Context, submissionID uuid.UUID) error {
			t.Error("handler must not be called for unreadable message")
			return nil
		},
	}

	acker := &fakeAcker{}
	c.handleDelivery(context.Background(), amqp.Delivery{
		Acknowledger: acker,
		Body:         []byte(`not json at all`),
	})

	if !acker.nacked {
		t.Fatal("expected poison message to be nacked")
	}
	if acker.requeue {
		t.Error("poison message must go to DLQ, not back to the queue")
	}
}
