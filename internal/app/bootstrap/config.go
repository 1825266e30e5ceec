// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/app/system/notify"
	"github.com/dalemusser/rantrio/internal/app/system/ratelimit"
	"github.com/dalemusser/rantrio/internal/app/system/tasks"
	"github.com/dalemusser/rantrio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for RanTrio.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, formation_schedule, etc.
//   - Environment variables: RANTRIO_MONGO_URI, RANTRIO_FORMATION_SCHEDULE, etc.
//   - Command-line flags: --mongo_uri, --formation_schedule, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "rantrio", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "api_key", Default: "", Desc: "Service key required as 'Authorization: Bearer <key>' on trigger endpoints (blank disables, not allowed in prod)"},

	// Trio formation
	{Name: "formation_schedule", Default: "0 0 * * *", Desc: "Cron expression for the daily formation run (blank disables the in-process trigger)"},
	{Name: "formation_timezone", Default: "UTC", Desc: "IANA time zone that decides the formation date and schedule"},
	{Name: "minimum_age", Default: formation.MinimumAge, Desc: "Minimum age in whole years to be placed in a trio"},
	{Name: "batch_timeout", Default: "60s", Desc: "Deadline for one formation run or cleanup pass"},

	// Content cleanup
	{Name: "cleanup_schedule", Default: "0 * * * *", Desc: "Cron expression for expired content cleanup (blank disables)"},

	// NATS
	{Name: "nats_url", Default: "", Desc: "NATS server URL for realtime group notices (blank disables)"},
	{Name: "nats_subject_prefix", Default: notify.DefaultSubjectPrefix, Desc: "Subject prefix for published group notices"},

	// HTTP
	{Name: "cors_allowed_origin", Default: "*", Desc: "Allowed CORS origin for the trigger endpoints"},
	{Name: "trigger_rate_limit", Default: 30, Desc: "Trigger endpoint requests allowed per minute per client IP (0 disables)"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs or CIDRs whose X-Forwarded-For/X-Real-IP headers are trusted (blank trusts none)"},
	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics at /metrics"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Manual trigger logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, RANTRIO_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "RANTRIO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey: appValues.String("api_key"),

		FormationSchedule: appValues.String("formation_schedule"),
		FormationTimezone: appValues.String("formation_timezone"),
		MinimumAge:        appValues.Int("minimum_age"),
		BatchTimeout:      appValues.Duration("batch_timeout", timeouts.DefaultBatch),

		CleanupSchedule: appValues.String("cleanup_schedule"),

		NATSURL:           appValues.String("nats_url"),
		NATSSubjectPrefix: appValues.String("nats_subject_prefix"),

		CORSAllowedOrigin: appValues.String("cors_allowed_origin"),
		TriggerRateLimit:  appValues.Int("trigger_rate_limit"),
		TrustedProxies:    appValues.String("trusted_proxies"),
		MetricsEnabled:    appValues.Bool("metrics_enabled"),

		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Schedules and the time zone are parsed here so a typo fails at boot
// rather than silently never running.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.MinimumAge <= 0 {
		return fmt.Errorf("minimum_age must be positive, got %d", appCfg.MinimumAge)
	}

	if _, err := time.LoadLocation(appCfg.FormationTimezone); err != nil {
		return fmt.Errorf("invalid formation_timezone %q: %w", appCfg.FormationTimezone, err)
	}

	for name, expr := range map[string]string{
		"formation_schedule": appCfg.FormationSchedule,
		"cleanup_schedule":   appCfg.CleanupSchedule,
	} {
		if expr == "" {
			continue
		}
		if _, err := tasks.ParseSchedule(expr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if appCfg.TriggerRateLimit < 0 {
		return fmt.Errorf("trigger_rate_limit must not be negative, got %d", appCfg.TriggerRateLimit)
	}

	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}

	switch appCfg.AuditLogAdmin {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_admin must be one of all, db, log, off; got %q", appCfg.AuditLogAdmin)
	}

	if appCfg.APIKey == "" {
		if coreCfg != nil && coreCfg.Env == "prod" {
			return fmt.Errorf("api_key is required in prod")
		}
		logger.Warn("api_key is blank; trigger endpoints are unauthenticated")
	}

	return nil
}
