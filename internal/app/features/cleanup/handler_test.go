package cleanup_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/rantrio/internal/app/features/cleanup"
	contentstore "github.com/dalemusser/rantrio/internal/app/store/content"
	"github.com/dalemusser/rantrio/internal/testutil"
	"go.uber.org/zap"
)

type fakeCleaner struct {
	n   int64
	err error
}

func (f fakeCleaner) CleanupExpired(context.Context) (int64, error) { return f.n, f.err }

type counter struct{ total int64 }

func (c *counter) ContentRemoved(n int64) { c.total += n }

func TestServe_Success(t *testing.T) {
	c := &counter{}
	h := cleanup.NewHandler(fakeCleaner{n: 5}, c, nil, zap.NewNop())
	rec := testutil.NewRecorder()

	cleanup.Routes(h).ServeHTTP(rec, testutil.NewRequest("POST", "/"))

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Message string `json:"message"`
		Removed int64  `json:"removed"`
	}
	rec.DecodeJSON(t, &body)
	if body.Removed != 5 {
		t.Errorf("removed: got %d, want 5", body.Removed)
	}
	if c.total != 5 {
		t.Errorf("counter: got %d, want 5", c.total)
	}
}

func TestServe_Error(t *testing.T) {
	h := cleanup.NewHandler(fakeCleaner{err: errors.New("boom")}, nil, nil, zap.NewNop())
	rec := testutil.NewRecorder()

	cleanup.Routes(h).ServeHTTP(rec, testutil.NewRequest("POST", "/"))

	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, `"details":"boom"`)
}

func TestServe_AgainstStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	trio := fx.CreateTrio(ctx, "2025-01-01", "a", "b", "c")
	post := fx.CreatePost(ctx, trio.ID, "a", time.Now().Add(-time.Hour))
	fx.CreateReply(ctx, post.ID, "b", time.Now().Add(time.Hour))
	fx.CreatePost(ctx, trio.ID, "c", time.Now().Add(time.Hour))

	h := cleanup.NewHandler(contentstore.New(db, zap.NewNop()), nil, nil, zap.NewNop())
	rec := testutil.NewRecorder()
	cleanup.Routes(h).ServeHTTP(rec, testutil.NewRequest("POST", "/"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"removed":2`)
}
