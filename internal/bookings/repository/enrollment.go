package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "lodging/internal/bookings/errors"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const EnrollmentsCollectionName = "Enrollments"

// EnrollmentRepository is a read-only view over the enrollment service's data.
type EnrollmentRepository interface {
	FindWithAddressByUserID(ctx context.Context, userID string) (*model.Enrollment, error)
}

type mongoEnrollmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEnrollmentRepository(cfg *config.Config) EnrollmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEnrollmentRepository{
		cfg:        cfg,
		collection: db.Collection(EnrollmentsCollectionName),
	}
}

func (r *mongoEnrollmentRepository) FindWithAddressByUserID(ctx context.Context, userID string) (*model.Enrollment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// Address is embedded, so the default projection already carries it.
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var enrollment model.Enrollment
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}

	return &enrollment, nil
}
