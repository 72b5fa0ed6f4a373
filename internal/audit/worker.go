package audit

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
)

type Recorder interface {
	LogPayment(ctx context.Context, messageID string, ev domain.PaymentRecordedEvent) error
}

// Worker writes an audit entry for every payment event it receives.
type Worker struct {
	recorder Recorder
	logger   observability.Logger
}

func NewWorker(recorder Recorder, logger observability.Logger) *Worker {
	return &Worker{recorder: recorder, logger: logger}
}

// Run handles deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Audit worker started")
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle acks a recorded or unreadable delivery and requeues one whose write
// failed.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	log := w.logger.WithFields(map[string]interface{}{
		"message_id":  d.MessageId,
		"routing_key": d.RoutingKey,
	})

	err := w.record(ctx, d)
	switch {
	case err == nil:
		if aerr := d.Ack(false); aerr != nil {
			log.WithError(aerr).Error("ack failed")
		}
	case errors.Is(err, domain.ErrInvalidInput):
		log.WithError(err).Warn("dropping malformed event")
		if aerr := d.Nack(false, false); aerr != nil {
			log.WithError(aerr).Error("nack failed")
		}
	default:
		log.WithError(err).Error("audit write failed, requeueing")
		if aerr := d.Nack(false, true); aerr != nil {
			log.WithError(aerr).Error("nack failed")
		}
	}
}

func (w *Worker) record(ctx context.Context, d amqp.Delivery) error {
	if d.Type != "" && d.Type != domain.EventPaymentRecorded {
		return errors.Wrapf(domain.ErrInvalidInput, "unexpected event type %q", d.Type)
	}
	var ev domain.PaymentRecordedEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return errors.Wrapf(domain.ErrInvalidInput, "decode event: %v", err)
	}
	messageID := d.MessageId
	if messageID == "" {
		messageID = ev.PaymentID
	}
	return w.recorder.LogPayment(ctx, messageID, ev)
}
