package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "lodging"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Bookings are written in a transaction whether or not the room lock is
	// enabled, so MONGO_URI must point at a replica set or mongos.
	DefaultRoomLockEnabled = true
	DefaultRoomLockTTL     = 10 * time.Second

	DefaultEventsEnabled         = false
	DefaultBookingEventsTopic    = "lodging.bookings"
	DefaultBookingEventsDLQTopic = "lodging.bookings.dlq"
)
