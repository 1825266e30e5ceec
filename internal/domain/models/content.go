// internal/domain/models/content.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a message shared inside a trio. Posts live for 24 hours;
// ExpiresAt is set at creation and expired posts are removed by the
// content cleanup routine.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrioID    primitive.ObjectID `bson:"trio_id" json:"trio_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	MediaURL  string             `bson:"media_url,omitempty" json:"media_url,omitempty"`
	MediaType string             `bson:"media_type,omitempty" json:"media_type,omitempty"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Reply answers a Post and expires with the same 24 hour rule.
type Reply struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Content   string             `bson:"content" json:"content"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
