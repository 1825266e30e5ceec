package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/indexes"
	"github.com/dalemusser/rantrio/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "rantrio_test",
		APIKey:            "test-key",
		FormationSchedule: "0 0 * * *",
		FormationTimezone: "UTC",
		MinimumAge:        15,
		BatchTimeout:      time.Minute,
		CleanupSchedule:   "@hourly",
		NATSSubjectPrefix: "rantrio",
		CORSAllowedOrigin: "*",
		TriggerRateLimit:  100,
		MetricsEnabled:    true,
		AuditLogAdmin:     "all",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://nope" }, wantErr: true},
		{name: "zero minimum age", mutate: func(c *AppConfig) { c.MinimumAge = 0 }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *AppConfig) { c.FormationTimezone = "Mars/Olympus" }, wantErr: true},
		{name: "named timezone", mutate: func(c *AppConfig) { c.FormationTimezone = "America/Chicago" }},
		{name: "bad formation schedule", mutate: func(c *AppConfig) { c.FormationSchedule = "every day" }, wantErr: true},
		{name: "bad cleanup schedule", mutate: func(c *AppConfig) { c.CleanupSchedule = "* * *" }, wantErr: true},
		{name: "schedules disabled", mutate: func(c *AppConfig) { c.FormationSchedule, c.CleanupSchedule = "", "" }},
		{name: "negative rate limit", mutate: func(c *AppConfig) { c.TriggerRateLimit = -1 }, wantErr: true},
		{name: "trusted proxies", mutate: func(c *AppConfig) { c.TrustedProxies = "10.0.0.0/8, 192.168.1.1" }},
		{name: "bad trusted proxy", mutate: func(c *AppConfig) { c.TrustedProxies = "10.0.0.0/99" }, wantErr: true},
		{name: "bad audit setting", mutate: func(c *AppConfig) { c.AuditLogAdmin = "verbose" }, wantErr: true},
		{name: "no key in dev", env: "dev", mutate: func(c *AppConfig) { c.APIKey = "" }},
		{name: "no key in prod", env: "prod", mutate: func(c *AppConfig) { c.APIKey = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			core := &config.CoreConfig{Env: tt.env}

			err := ValidateConfig(core, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// newTestHandler wires the full handler against a test database with the
// in-process schedules disabled.
func newTestHandler(t *testing.T) (http.Handler, DBDeps) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, testLogger()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cfg := validAppConfig()
	cfg.FormationSchedule = ""
	cfg.CleanupSchedule = ""

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	svc, err := buildServices(cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("buildServices failed: %v", err)
	}
	deps.svc = svc
	if svc.limiter != nil {
		t.Cleanup(svc.limiter.Close)
	}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}
	return h, deps
}

func post(h http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, nil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuildHandler_RandomizeGroups(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, deps.MongoDatabase).CreateProfiles(ctx, "u", 9)

	if rec := post(h, "/randomize-groups", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("without key: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec := post(h, "/randomize-groups", "test-key")
	if rec.Code != http.StatusOK {
		t.Fatalf("first run: got %d (%s)", rec.Code, rec.Body.String())
	}
	var first struct {
		Message       string `json:"message"`
		GroupsCreated int    `json:"groups_created"`
		Date          string `json:"date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if first.Message != "group randomization completed successfully" || first.GroupsCreated != 3 {
		t.Errorf("first run: got %+v", first)
	}
	if first.Date != time.Now().UTC().Format(time.DateOnly) {
		t.Errorf("date: got %q", first.Date)
	}

	rec = post(h, "/randomize-groups", "test-key")
	if !strings.Contains(rec.Body.String(), "groups already exist for today") {
		t.Errorf("second run: got %s", rec.Body.String())
	}

	n, err := deps.MongoDatabase.Collection("trios").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count trios failed: %v", err)
	}
	if n != 3 {
		t.Errorf("trios stored: got %d, want 3", n)
	}

	n, err = deps.MongoDatabase.Collection("notifications").CountDocuments(ctx, bson.M{"type": "group_formed"})
	if err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if n != 9 {
		t.Errorf("notifications: got %d, want 9", n)
	}

	n, err = deps.MongoDatabase.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": "trios_randomized"})
	if err != nil {
		t.Fatalf("count audit events failed: %v", err)
	}
	if n != 2 {
		t.Errorf("audit events: got %d, want 2", n)
	}
}

func TestBuildHandler_PreflightSkipsKey(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("OPTIONS", "/randomize-groups", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want %q", got, "*")
	}
}

func TestBuildHandler_Metrics(t *testing.T) {
	h, _ := newTestHandler(t)

	// Too few users still counts as a run.
	post(h, "/randomize-groups", "test-key")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `rantrio_formation_runs_total{outcome="not_enough_users"} 1`) {
		t.Error("expected not_enough_users run in metrics output")
	}
}

func TestBuildHandler_TriosAndCleanup(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, deps.MongoDatabase)
	fx.CreateProfiles(ctx, "u", 4)
	post(h, "/randomize-groups", "test-key")

	req := httptest.NewRequest("GET", "/trios/"+time.Now().UTC().Format(time.DateOnly), nil)
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("trios status: got %d", rec.Code)
	}
	var body struct {
		Trios []struct {
			MemberIDs []string `json:"member_ids"`
		} `json:"trios"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Trios) != 1 || len(body.Trios[0].MemberIDs) != 4 {
		t.Errorf("expected one trio of 4, got %+v", body.Trios)
	}

	rec = post(h, "/cleanup-expired-content", "test-key")
	if rec.Code != http.StatusOK {
		t.Errorf("cleanup status: got %d", rec.Code)
	}
}

func TestHealth_IsPublic(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("health status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema pass %d failed: %v", i+1, err)
		}
	}

	// The unique date index rejects a second batch for the same day.
	batches := db.Collection("formation_batches")
	doc := func(id string) bson.M {
		return bson.M{"_id": id, "date": "2025-01-01", "trio_count": 1, "created_at": time.Now().UTC()}
	}
	if _, err := batches.InsertOne(ctx, doc("b1")); err != nil {
		t.Fatalf("first batch insert failed: %v", err)
	}
	if _, err := batches.InsertOne(ctx, doc("b2")); err == nil {
		t.Error("expected duplicate date to be rejected")
	}
}
