package outbox

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/robertarktes/language-camp/internal/adapters/mongo"
	"github.com/robertarktes/language-camp/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type Source interface {
	GetUnpublishedOutbox(ctx context.Context, limit int64) ([]mongoadapter.OutboxEvent, error)
	MarkPublished(ctx context.Context, id primitive.ObjectID, publishedAt time.Time) error
}

type Sink interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

const (
	maxAttempts  = 3
	parallelSend = 4
)

// Publisher relays outbox events written by checkouts to the broker.
type Publisher struct {
	source    Source
	sink      Sink
	logger    observability.Logger
	batchSize int64
	backoff   time.Duration
	now       func() time.Time
}

func NewPublisher(source Source, sink Sink, logger observability.Logger, batchSize int64) *Publisher {
	return &Publisher{source: source, sink: sink, logger: logger, batchSize: batchSize, backoff: 200 * time.Millisecond, now: time.Now}
}

func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	p.logger.Info("Outbox publisher started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PublishBatch(ctx)
			if err != nil {
				p.logger.WithError(err).Error("outbox batch failed")
				continue
			}
			if n > 0 {
				p.logger.WithField("count", n).Debug("outbox events relayed")
			}
		}
	}
}

// PublishBatch relays one batch and returns how many events were marked
// published. Events that fail stay NEW and are retried on the next tick.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	events, err := p.source.GetUnpublishedOutbox(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		observability.OutboxLag.Set(0)
		return 0, nil
	}
	observability.OutboxLag.Set(p.now().Sub(events[0].CreatedAt).Seconds())

	published := make([]bool, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelSend)
	for i, ev := range events {
		g.Go(func() error {
			if err := p.publishWithRetry(gctx, ev); err != nil {
				p.logger.WithError(err).WithField("dedupe_key", ev.DedupeKey).Warn("outbox event not published")
				return nil
			}
			published[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for i, ev := range events {
		if !published[i] {
			continue
		}
		if err := p.source.MarkPublished(ctx, ev.ID, p.now().UTC()); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (p *Publisher) publishWithRetry(ctx context.Context, ev mongoadapter.OutboxEvent) error {
	msg := amqp.Publishing{
		MessageId:    ev.DedupeKey,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.CreatedAt,
		Type:         ev.EventType,
		Body:         ev.Payload,
	}
	var err error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			observability.RabbitPublishRetries.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff * time.Duration(1<<(i-1))):
			}
		}
		if err = p.sink.Publish(ctx, ev.EventType, msg); err == nil {
			return nil
		}
	}
	return errors.Wrapf(err, "publish %s after %d attempts", ev.DedupeKey, maxAttempts)
}
