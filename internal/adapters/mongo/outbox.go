package mongo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OutboxNew       = "NEW"
	OutboxPublished = "PUBLISHED"
)

type OutboxEvent struct {
	ID          primitive.ObjectID `bson:"_id"`
	EventType   string             `bson:"eventType"`
	DedupeKey   string             `bson:"dedupeKey"`
	Payload     []byte             `bson:"payload"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	PublishedAt *time.Time         `bson:"publishedAt,omitempty"`
}

func newOutboxEvent(eventType, aggregateKey string, payload interface{}) (OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, errors.Wrap(err, "encode outbox payload")
	}
	return OutboxEvent{
		ID:        primitive.NewObjectID(),
		EventType: eventType,
		DedupeKey: eventType + ":" + aggregateKey,
		Payload:   data,
		Status:    OutboxNew,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Store) GetUnpublishedOutbox(ctx context.Context, limit int64) ([]OutboxEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	cur, err := s.outbox.Find(ctx, bson.M{"status": OutboxNew}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find unpublished outbox")
	}
	var events []OutboxEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, errors.Wrap(err, "decode outbox")
	}
	return events, nil
}

func (s *Store) MarkPublished(ctx context.Context, id primitive.ObjectID, publishedAt time.Time) error {
	_, err := s.outbox.UpdateOne(ctx,
		bson.M{"_id": id, "status": OutboxNew},
		bson.M{"$set": bson.M{"status": OutboxPublished, "publishedAt": publishedAt}},
	)
	return errors.Wrap(err, "mark outbox published")
}
