package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Checkout records a purchase as one transaction: the cart item is removed, a
// seat is taken from the class, the instructor's enrollment count grows, the
// payment is stored and an outbox event is queued. Either all of it commits or
// nothing does.
func (s *Store) Checkout(ctx context.Context, p domain.PaymentRecord) (domain.CheckoutResult, error) {
	cartID, err := ObjectID(p.CartID)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return domain.CheckoutResult{}, errors.Wrap(err, "start session")
	}
	defer sess.EndSession(ctx)

	start := time.Now()
	defer func() { observability.CheckoutTxDuration.Observe(time.Since(start).Seconds()) }()

	var result domain.CheckoutResult
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result = domain.CheckoutResult{}

		del, err := s.carts.DeleteOne(sc, bson.M{"_id": cartID, "email": p.Email})
		if err != nil {
			return nil, errors.Wrap(err, "delete cart item")
		}
		result.DeleteResult = domain.DeleteResult{Acknowledged: true, DeletedCount: del.DeletedCount}

		result.SeatsUpdated, err = s.takeSeat(sc, p.ClassID)
		if err != nil {
			return nil, err
		}

		rec := p
		rec.ID = primitive.NewObjectID()
		res, err := s.payments.InsertOne(sc, rec)
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.Wrapf(domain.ErrAlreadyPurchased, "cart %s", p.CartID)
		}
		if err != nil {
			return nil, errors.Wrap(err, "insert payment")
		}
		result.InsertResult = insertResult(res)

		ev, err := newOutboxEvent(domain.EventPaymentRecorded, p.CartID, domain.PaymentRecordedEvent{
			PaymentID:     rec.ID.Hex(),
			Email:         rec.Email,
			CartID:        rec.CartID,
			ClassID:       rec.ClassID,
			TransactionID: rec.TransactionID,
			Price:         rec.Price,
			Date:          rec.Date,
			SeatsUpdated:  result.SeatsUpdated,
		})
		if err != nil {
			return nil, err
		}
		if _, err := s.outbox.InsertOne(sc, ev); err != nil {
			return nil, errors.Wrap(err, "insert outbox event")
		}
		return nil, nil
	})
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	return result, nil
}

// takeSeat decrements seats and increments enrollment of a class that still
// has a seat. An unknown class is skipped; a known class without seats
// aborts the checkout.
func (s *Store) takeSeat(ctx context.Context, classID string) (bool, error) {
	log := s.logger.WithField("class_id", classID)
	id, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		log.Warn("checkout references a malformed class id, seats left unchanged")
		return false, nil
	}

	var class domain.ClassOffering
	err = s.classes.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "seats": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"seats": -1, "enrolledStudents": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&class)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, err := s.classes.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return false, errors.Wrap(err, "count class")
		}
		if n > 0 {
			return false, errors.Wrapf(domain.ErrSoldOut, "class %s", classID)
		}
		log.Warn("checkout references a missing class, seats left unchanged")
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "take seat")
	}

	if class.InstructorEmail != "" {
		_, err := s.instructors.UpdateOne(ctx,
			bson.M{"email": class.InstructorEmail},
			bson.M{"$inc": bson.M{"studentsEnrolled": 1}},
		)
		if err != nil {
			return false, errors.Wrap(err, "increment instructor enrollment")
		}
	}
	return true, nil
}
