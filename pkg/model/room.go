package model

type Room struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	HotelID  string `json:"hotelId" bson:"hotel_id"`
	Name     string `json:"name" bson:"name"`
	Capacity int    `json:"capacity" bson:"capacity"`
}
