package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/trip-planner-nosql/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const NotificationsCollection = "notifications"

// NotificationStore keeps notifications in a MongoDB collection keyed by the
// notification ULID.
type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(coll *mongo.Collection) *NotificationStore {
	return &NotificationStore{coll: coll}
}

// EnsureIndexes creates the per-user newest-first index.
func (s *NotificationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create notifications index: %w", err)
	}
	return nil
}

func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	_, err := s.coll.InsertOne(ctx, n)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("notification %s exists: %w", n.NotificationID, domain.ErrConflict)
	}
	return err
}

func (s *NotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	var n domain.Notification
	err := s.coll.FindOne(ctx, bson.M{"_id": notificationID}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, onlyRead bool) ([]domain.Notification, error) {
	filter := bson.M{"user_id": userID}
	if onlyRead {
		filter["read"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []domain.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// SetRead atomically flips read from one value to another on a notification
// owned by userID. No match yields ErrConflict.
func (s *NotificationStore) SetRead(ctx context.Context, userID, notificationID string, from, to bool) (*domain.Notification, error) {
	var n domain.Notification
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": notificationID, "user_id": userID, "read": from},
		bson.M{"$set": bson.M{"read": to}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("notification changed concurrently: %w", domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationStore) SetAllRead(ctx context.Context, userID string, read bool) (int, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": bson.M{"$ne": read}},
		bson.M{"$set": bson.M{"read": read}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}
