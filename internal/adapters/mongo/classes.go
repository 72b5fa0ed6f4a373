package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var classSortFields = map[string]string{
	"price":    "price",
	"enrolled": "enrolledStudents",
	"seats":    "seats",
	"name":     "name",
}

func (s *Store) ListClasses(ctx context.Context, f domain.ClassFilter) ([]domain.ClassOffering, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.InstructorEmail != "" {
		filter["instructorEmail"] = f.InstructorEmail
	}

	opts := options.Find()
	if f.SortBy != "" {
		field, ok := classSortFields[f.SortBy]
		if !ok {
			return nil, errors.Wrapf(domain.ErrInvalidInput, "unknown sort key %q", f.SortBy)
		}
		dir := 1
		if f.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}})
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.classes.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list classes")
	}
	classes := []domain.ClassOffering{}
	if err := cur.All(ctx, &classes); err != nil {
		return nil, errors.Wrap(err, "decode classes")
	}
	return classes, nil
}

// PopularClasses returns approved classes by enrollment, ties by id.
func (s *Store) PopularClasses(ctx context.Context, limit int64) ([]domain.ClassOffering, error) {
	return s.ListClasses(ctx, domain.ClassFilter{
		Status:     domain.ClassApproved,
		SortBy:     "enrolled",
		Descending: true,
		Limit:      limit,
	})
}

func (s *Store) CreateClass(ctx context.Context, c domain.ClassOffering) (domain.InsertResult, error) {
	c.ID = primitive.NewObjectID()
	res, err := s.classes.InsertOne(ctx, c)
	if err != nil {
		s.logger.WithError(err).Error("failed to create class")
		return domain.InsertResult{}, errors.Wrap(err, "insert class")
	}
	return insertResult(res), nil
}

func (s *Store) UpdateClassStatus(ctx context.Context, classID string, status domain.ClassStatus, feedback *string) (domain.UpdateResult, error) {
	id, err := ObjectID(classID)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	set := bson.M{"status": status}
	if feedback != nil {
		set["feedback"] = *feedback
	}
	res, err := s.classes.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		s.logger.WithError(err).WithField("class_id", id.Hex()).Error("failed to update class status")
		return domain.UpdateResult{}, errors.Wrap(err, "update class status")
	}
	return domain.UpdateResult{Acknowledged: true, MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
