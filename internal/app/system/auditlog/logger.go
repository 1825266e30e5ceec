// Package auditlog records who triggered trio formation and content cleanup
// runs, to MongoDB and to the structured log.
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/rantrio/internal/app/store/audit"
	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// ActorHeader carries the admin's user id when a run is triggered from the
// admin dashboard. Scheduled runs leave it empty.
const ActorHeader = "X-Actor-ID"

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for manually triggered runs.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string

	// Proxies decides when forwarding headers name the client IP.
	Proxies ratelimit.TrustedProxies
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers can run without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.config.Admin
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// TriosRandomized logs a manually triggered formation run.
func (l *Logger) TriosRandomized(ctx context.Context, r *http.Request, res formation.Result, runErr error) {
	event := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventTriosRandomized,
		ActorID:   r.Header.Get(ActorHeader),
		IP:        l.config.Proxies.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   runErr == nil,
		Details: map[string]string{
			"date":           res.Date,
			"outcome":        string(res.Outcome),
			"groups_created": strconv.Itoa(res.GroupsCreated),
		},
	}
	if res.BatchID != "" {
		event.Details["batch_id"] = res.BatchID
	}
	if runErr != nil {
		event.FailureReason = runErr.Error()
	}
	l.Log(ctx, event)
}

// ContentCleanup logs a manually triggered expired content cleanup.
func (l *Logger) ContentCleanup(ctx context.Context, r *http.Request, removed int64, runErr error) {
	event := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventContentCleanup,
		ActorID:   r.Header.Get(ActorHeader),
		IP:        l.config.Proxies.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   runErr == nil,
		Details: map[string]string{
			"removed": strconv.FormatInt(removed, 10),
		},
	}
	if runErr != nil {
		event.FailureReason = runErr.Error()
	}
	l.Log(ctx, event)
}
