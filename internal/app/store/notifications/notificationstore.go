// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/dalemusser/rantrio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// InsertMany stores ns in one round trip, assigning ids and timestamps.
func (s *Store) InsertMany(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(ns))
	for i := range ns {
		ns[i].ID = primitive.NewObjectID()
		if ns[i].CreatedAt.IsZero() {
			ns[i].CreatedAt = now
		}
		docs[i] = ns[i]
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}
