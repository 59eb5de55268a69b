package kafka_config

import "time"

const (
	DefaultBrokers  = "localhost:9092"
	DefaultClientID = "lodging-bookings"

	// a booking event is published once per committed write; wait for every
	// in-sync replica and do not batch for long
	DefaultMaxAttempts  = 5
	DefaultBatchTimeout = 5 * time.Millisecond
	DefaultWriteTimeout = 5 * time.Second
	DefaultRequiredAcks = -1
	DefaultCompression  = "snappy"
	DefaultAsync        = false

	DefaultLogPublishes = true
)
