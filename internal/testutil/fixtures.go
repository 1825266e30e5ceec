package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/rantrio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts a profile with the given user id and birthday
// (YYYY-MM-DD).
func (f *Fixtures) CreateProfile(ctx context.Context, userID, birthday string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Username:  "user_" + userID,
		Birthday:  birthday,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateProfiles inserts n adult profiles with ids prefix-0 .. prefix-(n-1).
func (f *Fixtures) CreateProfiles(ctx context.Context, prefix string, n int) []models.Profile {
	f.t.Helper()

	out := make([]models.Profile, n)
	for i := range out {
		out[i] = f.CreateProfile(ctx, fmt.Sprintf("%s-%d", prefix, i), "1990-01-01")
	}
	return out
}

// CreateTrio inserts a trio directly, bypassing the formation batch.
func (f *Fixtures) CreateTrio(ctx context.Context, date string, memberIDs ...string) models.Trio {
	f.t.Helper()

	trio := models.Trio{
		ID:        primitive.NewObjectID(),
		Date:      date,
		MemberIDs: memberIDs,
		BatchID:   "fixture",
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("trios").InsertOne(ctx, trio); err != nil {
		f.t.Fatalf("failed to create test trio: %v", err)
	}
	return trio
}

// CreatePost inserts a post in trio that expires at expiresAt.
func (f *Fixtures) CreatePost(ctx context.Context, trioID primitive.ObjectID, userID string, expiresAt time.Time) models.Post {
	f.t.Helper()

	post := models.Post{
		ID:        primitive.NewObjectID(),
		TrioID:    trioID,
		UserID:    userID,
		Content:   "test post",
		ExpiresAt: expiresAt,
		CreatedAt: expiresAt.Add(-24 * time.Hour),
	}

	if _, err := f.db.Collection("posts").InsertOne(ctx, post); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

// CreateReply inserts a reply to post that expires at expiresAt.
func (f *Fixtures) CreateReply(ctx context.Context, postID primitive.ObjectID, userID string, expiresAt time.Time) models.Reply {
	f.t.Helper()

	reply := models.Reply{
		ID:        primitive.NewObjectID(),
		PostID:    postID,
		UserID:    userID,
		Content:   "test reply",
		ExpiresAt: expiresAt,
		CreatedAt: expiresAt.Add(-24 * time.Hour),
	}

	if _, err := f.db.Collection("replies").InsertOne(ctx, reply); err != nil {
		f.t.Fatalf("failed to create test reply: %v", err)
	}
	return reply
}

// NotificationsFor returns every notification stored for userID, newest
// first.
func (f *Fixtures) NotificationsFor(ctx context.Context, userID string) []models.Notification {
	f.t.Helper()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := f.db.Collection("notifications").Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		f.t.Fatalf("failed to list notifications: %v", err)
	}
	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		f.t.Fatalf("failed to decode notifications: %v", err)
	}
	return out
}
