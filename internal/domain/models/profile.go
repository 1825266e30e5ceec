// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the public-facing record for a user account.
//
// Identity lives with the auth provider; UserID is the provider's opaque
// identifier and is the value carried into trio membership lists.
// Birthday is stored as an ISO calendar date (YYYY-MM-DD).
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Username  string             `bson:"username" json:"username"`
	Birthday  string             `bson:"birthday" json:"birthday"`
	Bio       string             `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Candidate is the projection of a Profile that group formation reads.
// It is built fresh for every formation run and never stored.
type Candidate struct {
	UserID   string `bson:"user_id" json:"user_id"`
	Birthday string `bson:"birthday" json:"birthday"`
}
