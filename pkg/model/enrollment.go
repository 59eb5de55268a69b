package model

import "time"

// Enrollment is a user's registration for the event. Owned by the
// enrollment service; this module only reads it.
type Enrollment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address   *Address  `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type Address struct {
	Street       string `json:"street" bson:"street"`
	Number       string `json:"number" bson:"number"`
	Neighborhood string `json:"neighborhood,omitempty" bson:"neighborhood,omitempty"`
	City         string `json:"city" bson:"city"`
	State        string `json:"state" bson:"state"`
	PostalCode   string `json:"postalCode" bson:"postal_code"`
}
