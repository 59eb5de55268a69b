package model

import "time"

// RoomLock is an advisory lock held while a room's capacity is checked and a
// booking for it is written. Expired locks are removed by a TTL index. Token
// identifies the holder, so a holder that outlived its TTL cannot release a
// lock taken over by someone else.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"room_id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
