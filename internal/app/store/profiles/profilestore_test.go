package profilestore_test

import (
	"testing"

	profilestore "github.com/dalemusser/rantrio/internal/app/store/profiles"
	"github.com/dalemusser/rantrio/internal/app/system/indexes"
	"github.com/dalemusser/rantrio/internal/domain/models"
	"github.com/dalemusser/rantrio/internal/testutil"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_ListCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateProfile(ctx, "u1", "2000-01-02")
	fixtures.CreateProfile(ctx, "u2", "2012-12-31")

	cands, err := store.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}

	byID := map[string]string{}
	for _, c := range cands {
		byID[c.UserID] = c.Birthday
	}
	if byID["u1"] != "2000-01-02" || byID["u2"] != "2012-12-31" {
		t.Errorf("unexpected candidates: %v", byID)
	}
}

func TestStore_ListCandidates_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cands, err := store.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("expected no candidates, got %d", len(cands))
	}
}

func TestStore_ListCandidates_UniqueUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	fixtures.CreateProfile(ctx, "dup", "2001-01-01")
	_, err := db.Collection("profiles").InsertOne(ctx, models.Profile{
		ID:       primitive.NewObjectID(),
		UserID:   "dup",
		Username: "second",
		Birthday: "2001-01-01",
	})
	if !wafflemongo.IsDup(err) {
		t.Fatalf("expected duplicate user_id to be rejected, got %v", err)
	}

	cands, err := store.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(cands) != 1 {
		t.Errorf("expected one candidate per user, got %d", len(cands))
	}
}
