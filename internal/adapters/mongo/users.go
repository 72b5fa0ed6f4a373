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

// GetUser returns nil, nil when no user is stored for email.
func (s *Store) GetUser(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	return &u, nil
}

// CreateUserIfAbsent inserts u unless a user with the same email exists. The
// boolean reports whether a document was written.
func (s *Store) CreateUserIfAbsent(ctx context.Context, u domain.User) (domain.InsertResult, bool, error) {
	onInsert := bson.M{"role": u.Role}
	if u.Name != "" {
		onInsert["name"] = u.Name
	}
	if u.Image != "" {
		onInsert["image"] = u.Image
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": u.Email},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return domain.InsertResult{}, false, nil
	}
	if err != nil {
		return domain.InsertResult{}, false, errors.Wrap(err, "upsert user")
	}
	if res.UpsertedCount == 0 {
		return domain.InsertResult{}, false, nil
	}
	out := domain.InsertResult{Acknowledged: true}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.InsertedID = id.Hex()
	}
	return out, true, nil
}

func (s *Store) UpdateUser(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error) {
	if patch.Empty() {
		return domain.UpdateResult{}, errors.Wrap(domain.ErrInvalidInput, "nothing to update")
	}
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return domain.UpdateResult{}, errors.Wrap(err, "update user")
	}
	return domain.UpdateResult{Acknowledged: true, MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}
