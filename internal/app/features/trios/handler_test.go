package trios_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/rantrio/internal/app/features/trios"
	triostore "github.com/dalemusser/rantrio/internal/app/store/trios"
	"github.com/dalemusser/rantrio/internal/app/system/indexes"
	"github.com/dalemusser/rantrio/internal/domain/models"
	"github.com/dalemusser/rantrio/internal/testutil"
	"go.uber.org/zap"
)

type body struct {
	Date  string                 `json:"date"`
	Batch *models.FormationBatch `json:"batch"`
	Trios []models.Trio          `json:"trios"`
}

func TestServeDate_Formed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := triostore.New(db, zap.NewNop())
	groups := [][]string{{"a", "b", "c"}, {"d", "e", "f", "g"}}
	if _, err := store.InsertBatch(ctx, "batch-1", "2025-06-01", groups); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	rec := testutil.NewRecorder()
	trios.Routes(trios.NewHandler(store, zap.NewNop())).ServeHTTP(rec, testutil.NewRequest("GET", "/2025-06-01"))

	rec.AssertStatus(t, http.StatusOK)
	var got body
	rec.DecodeJSON(t, &got)
	if got.Batch == nil || got.Batch.ID != "batch-1" {
		t.Errorf("batch: got %+v", got.Batch)
	}
	if len(got.Trios) != 2 {
		t.Fatalf("trios: got %d, want 2", len(got.Trios))
	}
	if len(got.Trios[1].MemberIDs) != 4 {
		t.Errorf("second trio members: got %v", got.Trios[1].MemberIDs)
	}
}

func TestServeDate_NotFormed(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := testutil.NewRecorder()
	h := trios.NewHandler(triostore.New(db, zap.NewNop()), zap.NewNop())
	trios.Routes(h).ServeHTTP(rec, testutil.NewRequest("GET", "/2025-06-02"))

	rec.AssertStatus(t, http.StatusOK)
	var got body
	rec.DecodeJSON(t, &got)
	if got.Batch != nil {
		t.Errorf("expected null batch, got %+v", got.Batch)
	}
	if got.Trios == nil || len(got.Trios) != 0 {
		t.Errorf("expected empty trio list, got %v", got.Trios)
	}
}

type failingReader struct{}

func (failingReader) ListByDate(context.Context, string) ([]models.Trio, error) { return nil, nil }
func (failingReader) GetBatch(context.Context, string) (models.FormationBatch, error) {
	return models.FormationBatch{}, errors.New("socket closed")
}

func TestServeDate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "bad date", path: "/June-1", wantStatus: http.StatusBadRequest},
		{name: "impossible date", path: "/2025-02-30", wantStatus: http.StatusBadRequest},
		{name: "store failure", path: "/2025-06-01", wantStatus: http.StatusInternalServerError},
	}

	h := trios.NewHandler(failingReader{}, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			trios.Routes(h).ServeHTTP(rec, testutil.NewRequest("GET", tt.path))
			rec.AssertStatus(t, tt.wantStatus)
		})
	}
}
