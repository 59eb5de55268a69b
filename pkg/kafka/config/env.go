package kafka_config

// Environment keys read by Load. Booking events only need a producer, so no
// consumer group settings exist here.
const (
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaClientID = "KAFKA_CLIENT_ID"

	EnvKafkaMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaWriteTimeout = "KAFKA_PRODUCER_WRITE_TIMEOUT"
	EnvKafkaRequiredAcks = "KAFKA_PRODUCER_REQUIRED_ACKS"
	EnvKafkaCompression  = "KAFKA_PRODUCER_COMPRESSION"
	EnvKafkaAsync        = "KAFKA_PRODUCER_ASYNC"

	EnvKafkaLogPublishes = "KAFKA_LOG_PUBLISHES"
)
