// internal/app/store/trios/triostore.go
package triostore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/app/system/txn"
	"github.com/dalemusser/rantrio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store persists trios and the per-date formation batch record.
//
// The formation_batches collection carries a unique index on date. Every
// InsertBatch writes that record first, so two runs racing past the
// existence check cannot both store trios for the same day.
type Store struct {
	client  *mongo.Client
	trios   *mongo.Collection
	batches *mongo.Collection
	log     *zap.Logger
}

var _ formation.GroupStore = (*Store)(nil)

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		client:  db.Client(),
		trios:   db.Collection("trios"),
		batches: db.Collection("formation_batches"),
		log:     logger,
	}
}

// ExistsForDate reports whether any trio or batch record exists for date.
func (s *Store) ExistsForDate(ctx context.Context, date string) (bool, error) {
	n, err := s.batches.CountDocuments(ctx, bson.M{"date": date}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	n, err = s.trios.CountDocuments(ctx, bson.M{"date": date}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertBatch stores groups as the trios for date, all or nothing.
// It returns formation.ErrBatchExists when date already has a batch.
func (s *Store) InsertBatch(ctx context.Context, batchID, date string, groups [][]string) ([]models.Trio, error) {
	now := time.Now().UTC()
	trios := make([]models.Trio, len(groups))
	docs := make([]interface{}, len(groups))
	for i, g := range groups {
		trios[i] = models.Trio{
			ID:        primitive.NewObjectID(),
			Date:      date,
			MemberIDs: g,
			BatchID:   batchID,
			CreatedAt: now,
		}
		docs[i] = trios[i]
	}
	batch := models.FormationBatch{
		ID:        batchID,
		Date:      date,
		TrioCount: len(trios),
		CreatedAt: now,
	}

	err := txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		if _, err := s.batches.InsertOne(ctx, batch); err != nil {
			if wafflemongo.IsDup(err) {
				return formation.ErrBatchExists
			}
			return fmt.Errorf("insert formation batch: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if _, err := s.trios.InsertMany(ctx, docs); err != nil {
			if !txn.InTransaction(ctx) {
				s.rollback(batchID)
			}
			return fmt.Errorf("insert trios: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trios, nil
}

// rollback removes whatever a failed non-transactional insert left behind.
// It uses a fresh context because the caller's may be what failed.
func (s *Store) rollback(batchID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.trios.DeleteMany(ctx, bson.M{"batch_id": batchID}); err != nil {
		s.log.Error("rollback: deleting partial trios failed",
			zap.String("batch_id", batchID), zap.Error(err))
	}
	if _, err := s.batches.DeleteOne(ctx, bson.M{"_id": batchID}); err != nil {
		s.log.Error("rollback: deleting formation batch failed",
			zap.String("batch_id", batchID), zap.Error(err))
	}
}

// ListByDate returns the trios formed for date in creation order.
func (s *Store) ListByDate(ctx context.Context, date string) ([]models.Trio, error) {
	cur, err := s.trios.Find(ctx, bson.M{"date": date}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Trio{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBatch loads the formation batch record for date.
func (s *Store) GetBatch(ctx context.Context, date string) (models.FormationBatch, error) {
	var b models.FormationBatch
	if err := s.batches.FindOne(ctx, bson.M{"date": date}).Decode(&b); err != nil {
		return models.FormationBatch{}, err
	}
	return b, nil
}
