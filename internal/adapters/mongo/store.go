package mongo

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	classesCollection     = "classes"
	instructorsCollection = "instructors"
	usersCollection       = "users"
	cartsCollection       = "selectedCart"
	paymentsCollection    = "payments"
	outboxCollection      = "outbox"
)

// Store owns one handle per collection. The HTTP layer only sees it through
// narrow per-collection interfaces.
type Store struct {
	client      *mongo.Client
	classes     *mongo.Collection
	instructors *mongo.Collection
	users       *mongo.Collection
	carts       *mongo.Collection
	payments    *mongo.Collection
	outbox      *mongo.Collection
	logger      observability.Logger
}

func NewStore(client *mongo.Client, dbName string, logger observability.Logger) *Store {
	db := client.Database(dbName)
	return &Store{
		client:      client,
		classes:     db.Collection(classesCollection),
		instructors: db.Collection(instructorsCollection),
		users:       db.Collection(usersCollection),
		carts:       db.Collection(cartsCollection),
		payments:    db.Collection(paymentsCollection),
		outbox:      db.Collection(outboxCollection),
		logger:      logger,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email_unique")},
		},
		s.carts: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "classId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("carts_email_class_unique")},
		},
		s.payments: {
			{Keys: bson.D{{Key: "cartId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("payments_cart_unique")},
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("payments_email_date")},
		},
		s.classes: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "enrolledStudents", Value: -1}}, Options: options.Index().SetName("classes_status_enrolled")},
			{Keys: bson.D{{Key: "instructorEmail", Value: 1}}, Options: options.Index().SetName("classes_instructor")},
		},
		s.instructors: {
			{Keys: bson.D{{Key: "studentsEnrolled", Value: -1}}, Options: options.Index().SetName("instructors_students")},
		},
		s.outbox: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("outbox_status_created")},
			{Keys: bson.D{{Key: "dedupeKey", Value: 1}}, Options: options.Index().SetUnique(true).SetName("outbox_dedupe_unique")},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "%s indexes", coll.Name())
		}
	}
	return nil
}

// ObjectID parses a hex id coming from a URL or a request body.
func ObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(domain.ErrInvalidInput, "invalid id %q", hex)
	}
	return id, nil
}

func insertResult(res *mongo.InsertOneResult) domain.InsertResult {
	out := domain.InsertResult{Acknowledged: true}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.InsertedID = id.Hex()
	}
	return out
}
