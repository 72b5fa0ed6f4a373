package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        string    `bson:"_id"`
	MessageID string    `bson:"messageId,omitempty"`
	Action    string    `bson:"action"`
	Email     string    `bson:"email"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "messageId", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true).SetName("audit_message_unique"),
	})
	return errors.Wrap(err, "audit indexes")
}

// LogEvent stores one audit entry. A messageID that was already logged is
// treated as success so broker redeliveries stay harmless.
func (a *AuditLogger) LogEvent(ctx context.Context, messageID, action, email string, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New().String(),
		MessageID: messageID,
		Action:    action,
		Email:     email,
		Timestamp: time.Now().UTC(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if mongo.IsDuplicateKeyError(err) {
		a.logger.WithField("message_id", messageID).Debug("audit entry already recorded")
		return nil
	}
	if err != nil {
		a.logger.WithError(err).Error("failed to insert audit log")
		return errors.Wrap(err, "insert audit log")
	}
	return nil
}

func (a *AuditLogger) LogPayment(ctx context.Context, messageID string, ev domain.PaymentRecordedEvent) error {
	data := map[string]interface{}{
		"payment_id":     ev.PaymentID,
		"cart_id":        ev.CartID,
		"class_id":       ev.ClassID,
		"transaction_id": ev.TransactionID,
		"price":          ev.Price,
		"date":           ev.Date.Format(time.RFC3339),
		"seats_updated":  ev.SeatsUpdated,
	}
	return a.LogEvent(ctx, messageID, domain.EventPaymentRecorded, ev.Email, data)
}
