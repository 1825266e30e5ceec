// internal/app/store/content/contentstore.go
package contentstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store manages trio posts and their replies.
type Store struct {
	posts   *mongo.Collection
	replies *mongo.Collection
	log     *zap.Logger
	now     func() time.Time
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		posts:   db.Collection("posts"),
		replies: db.Collection("replies"),
		log:     logger,
		now:     time.Now,
	}
}

// CleanupExpired deletes posts past their expiry, then every reply that is
// past its own expiry or whose post no longer exists. Replies left behind
// by an earlier pass that failed halfway are swept too. It returns the
// number of documents removed across both collections.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	expired := bson.M{"expires_at": bson.M{"$lte": now}}

	pres, err := s.posts.DeleteMany(ctx, expired)
	if err != nil {
		return 0, err
	}

	orphaned, err := s.orphanedPostIDs(ctx)
	if err != nil {
		return pres.DeletedCount, err
	}

	replyFilter := expired
	if len(orphaned) > 0 {
		replyFilter = bson.M{"$or": bson.A{
			expired,
			bson.M{"post_id": bson.M{"$in": orphaned}},
		}}
	}
	rres, err := s.replies.DeleteMany(ctx, replyFilter)
	if err != nil {
		return pres.DeletedCount, err
	}

	if pres.DeletedCount > 0 || rres.DeletedCount > 0 {
		s.log.Info("deleted expired content",
			zap.Int64("posts", pres.DeletedCount),
			zap.Int64("replies", rres.DeletedCount))
	}
	return pres.DeletedCount + rres.DeletedCount, nil
}

// orphanedPostIDs returns the post ids replies point at that have no post.
func (s *Store) orphanedPostIDs(ctx context.Context) (bson.A, error) {
	referenced, err := s.replies.Distinct(ctx, "post_id", bson.M{})
	if err != nil {
		return nil, err
	}
	if len(referenced) == 0 {
		return nil, nil
	}

	existing, err := s.posts.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": referenced}})
	if err != nil {
		return nil, err
	}
	live := make(map[primitive.ObjectID]bool, len(existing))
	for _, v := range existing {
		if id, ok := v.(primitive.ObjectID); ok {
			live[id] = true
		}
	}

	var out bson.A
	for _, v := range referenced {
		if id, ok := v.(primitive.ObjectID); ok && !live[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
