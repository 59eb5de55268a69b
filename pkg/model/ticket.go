package model

import "time"

type TicketStatus string

const (
	TicketStatusReserved TicketStatus = "RESERVED"
	TicketStatusPaid     TicketStatus = "PAID"
)

type TicketType struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	Name          string `json:"name" bson:"name"`
	Price         int    `json:"price" bson:"price"`
	IsRemote      bool   `json:"isRemote" bson:"is_remote"`
	IncludesHotel bool   `json:"includesHotel" bson:"includes_hotel"`
}

// Ticket is read together with its TicketType.
type Ticket struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	EnrollmentID string       `json:"enrollmentId" bson:"enrollment_id"`
	TicketTypeID string       `json:"ticketTypeId" bson:"ticket_type_id"`
	Status       TicketStatus `json:"status" bson:"status"`
	TicketType   *TicketType  `json:"ticketType,omitempty" bson:"ticket_type,omitempty"`
	CreatedAt    time.Time    `json:"createdAt" bson:"created_at"`
}
