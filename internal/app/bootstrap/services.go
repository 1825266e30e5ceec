// internal/app/bootstrap/services.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/rantrio/internal/app/store/audit"
	contentstore "github.com/dalemusser/rantrio/internal/app/store/content"
	notificationstore "github.com/dalemusser/rantrio/internal/app/store/notifications"
	profilestore "github.com/dalemusser/rantrio/internal/app/store/profiles"
	triostore "github.com/dalemusser/rantrio/internal/app/store/trios"
	"github.com/dalemusser/rantrio/internal/app/system/auditlog"
	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/app/system/metrics"
	"github.com/dalemusser/rantrio/internal/app/system/notify"
	"github.com/dalemusser/rantrio/internal/app/system/ratelimit"
	"github.com/dalemusser/rantrio/internal/app/system/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// services is the object graph built once at startup.
type services struct {
	former    *formation.Former
	trios     *triostore.Store
	content   *contentstore.Store
	audit     *auditlog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Recorder
	scheduler *tasks.Scheduler
	limiter   *ratelimit.Limiter // nil when trigger_rate_limit is 0
	proxies   ratelimit.TrustedProxies
}

func buildServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	loc, err := time.LoadLocation(appCfg.FormationTimezone)
	if err != nil {
		return nil, fmt.Errorf("formation_timezone: %w", err)
	}
	proxies, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted_proxies: %w", err)
	}
	db := deps.MongoDatabase

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg, "rantrio")

	notifiers := notify.Multi{notify.NewStore(notificationstore.New(db))}
	if deps.NATS != nil {
		notifiers = append(notifiers, notify.NewNATS(deps.NATS, appCfg.NATSSubjectPrefix, logger))
	}

	svc := &services{
		trios:    triostore.New(db, logger),
		content:  contentstore.New(db, logger),
		audit:    auditlog.New(audit.New(db), logger, auditlog.Config{Admin: appCfg.AuditLogAdmin, Proxies: proxies}),
		registry: reg,
		metrics:  rec,
		proxies:  proxies,
	}
	if appCfg.TriggerRateLimit > 0 {
		svc.limiter = ratelimit.New(appCfg.TriggerRateLimit, time.Minute)
	}
	svc.former = formation.New(
		profilestore.New(db),
		svc.trios,
		svc.content,
		notifiers,
		rec,
		formation.Config{MinimumAge: appCfg.MinimumAge, Location: loc},
		logger,
	)

	svc.scheduler = tasks.NewScheduler(loc, logger)
	formJob := tasks.TrioFormationJob(svc.former, appCfg.FormationSchedule, logger)
	formJob.Timeout = appCfg.BatchTimeout
	cleanJob := tasks.ContentCleanupJob(svc.content, rec, appCfg.CleanupSchedule, logger)
	cleanJob.Timeout = appCfg.BatchTimeout
	for _, job := range []tasks.Job{formJob, cleanJob} {
		if err := svc.scheduler.Add(job); err != nil {
			return nil, err
		}
	}

	return svc, nil
}
