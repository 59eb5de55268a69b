package kafka

import "errors"

// Construction errors.
var (
	ErrNilConfig  = errors.New("kafka config is nil")
	ErrNoBrokers  = errors.New("at least one kafka broker is required")
	ErrEmptyTopic = errors.New("kafka topic cannot be empty")
)

// Publish errors.
var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrInvalidMessage = errors.New("invalid message")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)
