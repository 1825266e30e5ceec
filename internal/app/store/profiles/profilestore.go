// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"

	"github.com/dalemusser/rantrio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// ListCandidates returns every profile's user id and birthday.
// Only the two fields formation needs are read off the wire.
func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "user_id": 1, "birthday": 1})

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Candidate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
