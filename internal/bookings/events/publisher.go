package events

import (
	"context"
	"time"

	"lodging/pkg/kafka"
	"lodging/pkg/middleware"
	"lodging/pkg/model"
)

const (
	EventBookingCreated     = "booking.created"
	EventBookingRoomChanged = "booking.room_changed"

	SchemaVersion = "1"
)

// BookingEvent is the payload published for every booking write.
type BookingEvent struct {
	BookingID      string    `json:"bookingId"`
	UserID         string    `json:"userId"`
	RoomID         string    `json:"roomId"`
	PreviousRoomID string    `json:"previousRoomId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingRoomChanged(ctx context.Context, booking *model.Booking, previousRoomID string) error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessagePublisher
	source   string
}

func NewKafkaPublisher(producer MessagePublisher, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, EventBookingCreated, booking, "")
}

func (p *kafkaPublisher) BookingRoomChanged(ctx context.Context, booking *model.Booking, previousRoomID string) error {
	return p.publish(ctx, EventBookingRoomChanged, booking, previousRoomID)
}

// publish keys messages by user so every event of one booking lands on the
// same partition.
func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking, previousRoomID string) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.UserID).
		WithValue(BookingEvent{
			BookingID:      booking.ID,
			UserID:         booking.UserID,
			RoomID:         booking.RoomID,
			PreviousRoomID: previousRoomID,
			OccurredAt:     time.Now().UTC(),
		}).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.GetRequestID(ctx)).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}

type noopPublisher struct{}

// NewNoopPublisher is used when event publishing is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingCreated(context.Context, *model.Booking) error {
	return nil
}

func (noopPublisher) BookingRoomChanged(context.Context, *model.Booking, string) error {
	return nil
}
