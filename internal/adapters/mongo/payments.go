package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListPayments returns the payment history of email, newest first. The same
// documents back the enrolled-classes listing.
func (s *Store) ListPayments(ctx context.Context, email string) ([]domain.PaymentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.payments.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	payments := []domain.PaymentRecord{}
	if err := cur.All(ctx, &payments); err != nil {
		return nil, errors.Wrap(err, "decode payments")
	}
	return payments, nil
}
