package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/validators"
	"github.com/dalemusser/rantrio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expectedCollections := []string{
		"profiles",
		"trios",
		"formation_batches",
		"posts",
		"replies",
		"notifications",
		"audit_events",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestTriosValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	trio := func(date string, members ...string) bson.M {
		return bson.M{
			"_id":        primitive.NewObjectID(),
			"date":       date,
			"member_ids": members,
			"batch_id":   "b1",
			"created_at": time.Now().UTC(),
		}
	}

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{name: "three members", doc: trio("2025-01-01", "a", "b", "c")},
		{name: "five members", doc: trio("2025-01-01", "a", "b", "c", "d", "e")},
		{name: "two members", doc: trio("2025-01-01", "a", "b"), wantErr: true},
		{name: "six members", doc: trio("2025-01-01", "a", "b", "c", "d", "e", "f"), wantErr: true},
		{name: "duplicate member", doc: trio("2025-01-01", "a", "a", "b"), wantErr: true},
		{name: "bad date", doc: trio("01/01/2025", "a", "b", "c"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection("trios").InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
