// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/rantrio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It wires
// the formation pipeline and starts the scheduled jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Batch: appCfg.BatchTimeout})

	svc, err := buildServices(appCfg, deps, logger)
	if err != nil {
		return err
	}
	*deps.svc = *svc

	deps.svc.scheduler.Start()
	return nil
}
