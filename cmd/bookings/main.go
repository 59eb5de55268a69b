package main

import (
	"context"
	"time"

	"lodging/internal/bookings/events"
	"lodging/internal/bookings/handler"
	"lodging/internal/bookings/repository"
	"lodging/internal/bookings/service"
	"lodging/internal/bookings/validator"
	"lodging/pkg/app"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/kafka"
	kafka_config "lodging/pkg/kafka/config"
	kafka_middleware "lodging/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	checkTransactionSupport(cfg)

	cfg.Log.Info("Starting Bookings service")
	publisher, producer := initPublisher(cfg)
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := initServices(cfg, bookingValidator, publisher)

	serverApp := app.NewApplication(
		cfg,
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewBookingHandler(bookingService, bookingValidator, cfg.Log),
	)
	serverApp.Run()

	if producer != nil {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka producer", "error", err)
		}
	}
	cfg.GracefulShutdown()
}

func initServices(cfg *config.Config, bookingValidator *validator.BookingValidator, publisher events.Publisher) service.BookingService {
	var lockRepo repository.RoomLockRepository
	if cfg.RoomLockEnabled {
		lockRepo = repository.NewMongoRoomLockRepository(cfg)
	}

	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewMongoEnrollmentRepository(cfg),
		repository.NewMongoTicketRepository(cfg),
		repository.NewMongoRoomRepository(cfg),
		lockRepo,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"room_lock_enabled", cfg.RoomLockEnabled,
	)
	return bookingService
}

func initPublisher(cfg *config.Config) (events.Publisher, *kafka.Producer) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NewNoopPublisher(), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	if kafkaCfg.LogPublishes {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return events.NewKafkaPublisher(producer, ServiceName), producer
}

func checkTransactionSupport(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, err := mongotx.SupportsTransactions(ctx, cfg.Client.Mongo)
	if err != nil {
		cfg.Log.Warn("Could not determine MongoDB topology", "error", err)
		return
	}
	if !ok {
		cfg.Log.Warn("MongoDB is a standalone server; booking writes need transactions and will fail until it runs as a replica set",
			"mongo_database", cfg.MongoDatabaseName,
		)
	}
}
