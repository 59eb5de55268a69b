package repository

import (
	"context"
	"fmt"
	bookingserrors "lodging/internal/bookings/errors"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	TicketsCollectionName     = "Tickets"
	TicketTypesCollectionName = "Ticket_types"
)

// TicketRepository is a read-only view over the ticketing service's data.
type TicketRepository interface {
	FindByEnrollmentID(ctx context.Context, enrollmentID string) (*model.Ticket, error)
}

type mongoTicketRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTicketRepository(cfg *config.Config) TicketRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTicketRepository{
		cfg:        cfg,
		collection: db.Collection(TicketsCollectionName),
	}
}

// FindByEnrollmentID returns the enrollment's ticket with its type joined in.
func (r *mongoTicketRepository) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*model.Ticket, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, ticketWithTypePipeline(enrollmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	defer cursor.Close(ctx)

	var tickets []*model.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if len(tickets) == 0 {
		return nil, bookingserrors.ErrTicketNotFound
	}

	return tickets[0], nil
}

// ticket_type_id is stored as a hex string while Ticket_types uses ObjectIDs,
// hence the $toObjectId in the join.
func ticketWithTypePipeline(enrollmentID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"enrollment_id": enrollmentID}}},
		{{Key: "$sort", Value: bson.M{"created_at": -1}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$lookup", Value: bson.M{
			"from": TicketTypesCollectionName,
			"let":  bson.M{"typeId": "$ticket_type_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{
					"$eq": bson.A{"$_id", bson.M{"$toObjectId": "$$typeId"}},
				}}},
			},
			"as": "ticket_type",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$ticket_type",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}
