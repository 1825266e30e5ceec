// internal/domain/models/trio.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trio is one daily group. Despite the name it holds 3 to 5 members:
// when the eligible population is not divisible by three the last trio
// of the day absorbs the leftover one or two users.
//
// NOTE:
//   - Date is the calendar day the trio belongs to (YYYY-MM-DD).
//   - MemberIDs order comes from the shuffle and carries no meaning.
//   - BatchID links the trio to the FormationBatch that created it.
type Trio struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Date      string             `bson:"date" json:"date"`
	MemberIDs []string           `bson:"member_ids" json:"member_ids"`
	BatchID   string             `bson:"batch_id" json:"batch_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// FormationBatch records that trios were formed for a date.
// Exactly one document per date (unique index on date); its insert is what
// makes a second formation run for the same day fail.
type FormationBatch struct {
	ID        string    `bson:"_id" json:"id"`
	Date      string    `bson:"date" json:"date"`
	TrioCount int       `bson:"trio_count" json:"trio_count"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
