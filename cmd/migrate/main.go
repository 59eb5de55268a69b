package main

import (
	"context"
	"time"

	mongoMigration "lodging/internal/migrations/mongo"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Mongo migration job")
	if ok, err := mongotx.SupportsTransactions(ctx, cfg.Client.Mongo); err == nil && !ok {
		cfg.Log.Warn("MongoDB is a standalone server; the bookings service needs a replica set or mongos for its writes")
	}
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	err := mongoMigration.RunMigration(ctx, db, cfg.Log)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
