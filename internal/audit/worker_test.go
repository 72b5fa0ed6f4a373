package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
)

type ackRecorder struct {
	acked, nacked, requeued int
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

type fakeRecorder struct {
	ids []string
	err error
}

func (f *fakeRecorder) LogPayment(_ context.Context, messageID string, _ domain.PaymentRecordedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, messageID)
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, typ, id string, body []byte) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{Acknowledger: ack, Type: typ, MessageId: id, RoutingKey: typ, Body: body}
}

func eventBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(domain.PaymentRecordedEvent{PaymentID: "p1", Email: "ana@example.com", CartID: "c1", Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleRecordsAndAcks(t *testing.T) {
	rec := &fakeRecorder{}
	ack := &ackRecorder{}
	w := NewWorker(rec, observability.NewDiscardLogger())

	w.Handle(context.Background(), delivery(t, ack, domain.EventPaymentRecorded, "payment.recorded:c1", eventBody(t)))

	if ack.acked != 1 || ack.nacked != 0 {
		t.Fatalf("acks=%d nacks=%d", ack.acked, ack.nacked)
	}
	if len(rec.ids) != 1 || rec.ids[0] != "payment.recorded:c1" {
		t.Errorf("recorded ids %v", rec.ids)
	}
}

func TestHandleFallsBackToPaymentID(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewWorker(rec, observability.NewDiscardLogger())

	w.Handle(context.Background(), delivery(t, &ackRecorder{}, "", "", eventBody(t)))

	if len(rec.ids) != 1 || rec.ids[0] != "p1" {
		t.Errorf("recorded ids %v", rec.ids)
	}
}

func TestHandleDropsMalformedEvents(t *testing.T) {
	w := NewWorker(&fakeRecorder{}, observability.NewDiscardLogger())

	for _, d := range []struct {
		typ  string
		body []byte
	}{
		{domain.EventPaymentRecorded, []byte("{not json")},
		{"class.created", eventBody(t)},
	} {
		ack := &ackRecorder{}
		w.Handle(context.Background(), delivery(t, ack, d.typ, "m", d.body))
		if ack.nacked != 1 || ack.requeued != 0 {
			t.Errorf("type %q: nacked=%d requeued=%d", d.typ, ack.nacked, ack.requeued)
		}
	}
}

func TestHandleRequeuesOnWriteFailure(t *testing.T) {
	ack := &ackRecorder{}
	w := NewWorker(&fakeRecorder{err: errors.New("mongo down")}, observability.NewDiscardLogger())

	w.Handle(context.Background(), delivery(t, ack, domain.EventPaymentRecorded, "m", eventBody(t)))

	if ack.requeued != 1 {
		t.Fatalf("expected requeue, got nacked=%d requeued=%d", ack.nacked, ack.requeued)
	}
}
