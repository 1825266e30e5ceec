// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level); everything specific to
// trio formation lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Service key required on trigger endpoints (blank disables the check)
	APIKey string

	// Trio formation
	FormationSchedule string // cron expression for the in-process daily run (blank disables)
	FormationTimezone string // IANA zone that decides which calendar date a run forms
	MinimumAge        int    // whole years a member must have reached to be grouped
	BatchTimeout      time.Duration

	// Expired content cleanup between formation runs (blank disables)
	CleanupSchedule string

	// Realtime notifications over NATS (blank URL disables)
	NATSURL           string
	NATSSubjectPrefix string

	// HTTP surface
	CORSAllowedOrigin string
	TriggerRateLimit  int    // trigger requests per minute per client IP (0 disables)
	TrustedProxies    string // proxies allowed to name the client IP in forwarding headers
	MetricsEnabled    bool

	// Audit logging for manually triggered runs: all, db, log or off
	AuditLogAdmin string
}
