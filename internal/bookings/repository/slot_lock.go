package repository

import (
	"context"
	"fmt"
	bookingserrors "ridepoint/internal/bookings/errors"
	"ridepoint/pkg/config"
	"ridepoint/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SlotLockCollectionName = "Slot_locks"

// SlotLockRepository owns the per-vehicle-day exclusivity records. The
// collection carries a partial unique index on (vehicle_id, iso_date)
// restricted to documents with voided_at unset, so Create is the
// conflict-detection primitive: a concurrent claim on the same day fails
// with a duplicate-key error regardless of any earlier availability check.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	FindActive(ctx context.Context, vehicleID string, isoDates []string) ([]*model.SlotLock, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.SlotLock, error)
	AssignBooking(ctx context.Context, lockIDs []string, bookingID string) error
	Void(ctx context.Context, lockIDs []string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

// Create inserts a lock claim. Returns ErrSlotTaken when another active lock
// already holds the same (vehicle_id, iso_date).
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	lock.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrSlotTaken
		}
		return nil, fmt.Errorf("failed to create slot lock: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lock.ID = oid.Hex()
	}
	return lock, nil
}

// FindActive returns the non-voided locks for the vehicle whose day falls in
// the given key set, in day order.
func (r *mongoSlotLockRepository) FindActive(ctx context.Context, vehicleID string, isoDates []string) ([]*model.SlotLock, error) {
	filter := bson.M{
		"vehicle_id": vehicleID,
		"iso_date":   bson.M{"$in": isoDates},
		"voided_at":  nil,
	}

	opts := options.Find().SetSort(bson.D{{Key: "iso_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slot locks: %w", err)
	}
	defer cursor.Close(ctx)

	var locks []*model.SlotLock
	if err = cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode slot locks: %w", err)
	}

	return locks, nil
}

func (r *mongoSlotLockRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.SlotLock, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"booking_id": bookingID},
		options.Find().SetSort(bson.D{{Key: "iso_date", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find slot locks by booking: %w", err)
	}
	defer cursor.Close(ctx)

	var locks []*model.SlotLock
	if err = cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode slot locks: %w", err)
	}

	return locks, nil
}

// AssignBooking stamps the booking id onto locks claimed before the booking
// document existed. Locks are claimed with only a holder id; the link is
// written once the booking insert has an id, inside the same transaction.
func (r *mongoSlotLockRepository) AssignBooking(ctx context.Context, lockIDs []string, bookingID string) error {
	if len(lockIDs) == 0 {
		return nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(lockIDs))
	for _, id := range lockIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, oid)
	}

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}},
		bson.M{"$set": bson.M{"booking_id": bookingID}},
	)
	if err != nil {
		return fmt.Errorf("failed to assign booking to slot locks: %w", err)
	}

	return nil
}

// Void soft-deletes locks by id. Already-voided locks are left untouched, so
// repeated voids are no-ops and release stays retry-safe.
func (r *mongoSlotLockRepository) Void(ctx context.Context, lockIDs []string) error {
	if len(lockIDs) == 0 {
		return nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(lockIDs))
	for _, id := range lockIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, oid)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}, "voided_at": nil},
		bson.M{"$set": bson.M{"voided_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to void slot locks: %w", err)
	}

	return nil
}
