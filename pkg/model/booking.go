package model

import (
	"time"
)

// Booking assigns one user to one room. UserID never changes after creation.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"userId" bson:"user_id" validate:"required,max=64"`
	RoomID    string    `json:"roomId" bson:"room_id" validate:"required,mongodb"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// BookingRequest is the body of both book and change-room calls. RoomID may be
// empty; the service decides how an absent room is rejected.
type BookingRequest struct {
	RoomID string `json:"roomId" validate:"omitempty,mongodb"`
}

type BookingResponse struct {
	BookingID string `json:"bookingId"`
}
