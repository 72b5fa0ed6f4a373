package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) ListCart(ctx context.Context, email string) ([]domain.CartSelection, error) {
	cur, err := s.carts.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}
	items := []domain.CartSelection{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return items, nil
}

// GetCartPrice loads only the price of a cart item owned by email. It returns
// nil, nil when no such item exists.
func (s *Store) GetCartPrice(ctx context.Context, itemID string, email string) (*domain.CartSelection, error) {
	id, err := ObjectID(itemID)
	if err != nil {
		return nil, err
	}
	var item domain.CartSelection
	opts := options.FindOne().SetProjection(bson.M{"price": 1})
	err = s.carts.FindOne(ctx, bson.M{"_id": id, "email": email}, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find cart item")
	}
	return &item, nil
}

func (s *Store) AddToCart(ctx context.Context, item domain.CartSelection) (domain.InsertResult, error) {
	item.ID = primitive.NewObjectID()
	res, err := s.carts.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return domain.InsertResult{}, errors.Wrapf(domain.ErrConflict, "class %s already selected", item.ClassID)
	}
	if err != nil {
		return domain.InsertResult{}, errors.Wrap(err, "insert cart item")
	}
	return insertResult(res), nil
}

// RemoveFromCart deletes a cart item owned by email. A missing item is not an
// error; DeletedCount is then zero.
func (s *Store) RemoveFromCart(ctx context.Context, itemID string, email string) (domain.DeleteResult, error) {
	id, err := ObjectID(itemID)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	res, err := s.carts.DeleteOne(ctx, bson.M{"_id": id, "email": email})
	if err != nil {
		return domain.DeleteResult{}, errors.Wrap(err, "delete cart item")
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
