package repository

import (
	"context"
	"fmt"
	bookingserrors "lodging/internal/bookings/errors"
	"lodging/pkg/config"
	"lodging/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const RoomLocksCollectionName = "Room_locks"

// RoomLockRepository serialises capacity checks per room across processes.
type RoomLockRepository interface {
	Acquire(ctx context.Context, roomID string, ttl time.Duration) (*model.RoomLock, error)
	Release(ctx context.Context, lock *model.RoomLock) error
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(RoomLocksCollectionName),
	}
}

func RoomLockID(roomID string) string {
	return "room_lock_" + roomID
}

// Acquire inserts the lock document for roomID. It returns ErrRoomLocked if
// another holder's lock has not yet expired.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, roomID string, ttl time.Duration) (*model.RoomLock, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.RoomLock{
		ID:        RoomLockID(roomID),
		RoomID:    roomID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	// The TTL monitor runs about once a minute, so stale locks are cleared here too.
	if _, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lte": now},
	}); err != nil {
		return nil, fmt.Errorf("failed to clear expired room lock: %w", err)
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrRoomLocked
		}
		return nil, fmt.Errorf("failed to acquire room lock: %w", err)
	}

	return lock, nil
}

// Release deletes lock only if it is still held by the same holder. A lock
// that expired and was taken over is left alone.
func (r *mongoRoomLockRepository) Release(ctx context.Context, lock *model.RoomLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, releaseFilter(lock))
	if err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	if result.DeletedCount == 0 {
		r.cfg.Log.Warn("Room lock was no longer held at release", "lock_id", lock.ID, "room_id", lock.RoomID)
	}
	return nil
}

func releaseFilter(lock *model.RoomLock) bson.M {
	return bson.M{"_id": lock.ID, "token": lock.Token}
}
