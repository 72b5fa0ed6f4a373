package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) ListInstructors(ctx context.Context) ([]domain.Instructor, error) {
	return s.findInstructors(ctx, options.Find())
}

func (s *Store) PopularInstructors(ctx context.Context, limit int64) ([]domain.Instructor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "studentsEnrolled", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	return s.findInstructors(ctx, opts)
}

func (s *Store) findInstructors(ctx context.Context, opts *options.FindOptions) ([]domain.Instructor, error) {
	cur, err := s.instructors.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list instructors")
	}
	instructors := []domain.Instructor{}
	if err := cur.All(ctx, &instructors); err != nil {
		return nil, errors.Wrap(err, "decode instructors")
	}
	return instructors, nil
}
