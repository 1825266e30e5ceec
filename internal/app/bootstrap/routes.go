// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	cleanupfeature "github.com/dalemusser/rantrio/internal/app/features/cleanup"
	healthfeature "github.com/dalemusser/rantrio/internal/app/features/health"
	randomizefeature "github.com/dalemusser/rantrio/internal/app/features/randomize"
	triosfeature "github.com/dalemusser/rantrio/internal/app/features/trios"
	"github.com/dalemusser/rantrio/internal/app/system/auditlog"
	"github.com/dalemusser/rantrio/internal/app/system/auth"
	"github.com/dalemusser/rantrio/internal/app/system/metrics"
	"github.com/dalemusser/rantrio/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Public: /health and /metrics. Behind CORS, the per-IP rate limit and the
// service key:
// /randomize-groups, /cleanup-expired-content and /trios/{date}.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.svc

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	var natsConn healthfeature.NATSConn
	if deps.NATS != nil {
		natsConn = deps.NATS
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, natsConn, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler(svc.registry))
	}

	r.Group(func(r chi.Router) {
		// CORS runs first so browser preflights never need the key.
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{appCfg.CORSAllowedOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-Client-Info", auth.KeyHeader, "Content-Type", auditlog.ActorHeader},
			MaxAge:         300,
		}))
		r.Use(ratelimit.Middleware(svc.limiter, svc.proxies, logger))
		r.Use(auth.RequireServiceKey(appCfg.APIKey, logger))

		randomizeHandler := randomizefeature.NewHandler(svc.former, svc.audit, logger)
		r.Mount("/randomize-groups", randomizefeature.Routes(randomizeHandler))

		cleanupHandler := cleanupfeature.NewHandler(svc.content, svc.metrics, svc.audit, logger)
		r.Mount("/cleanup-expired-content", cleanupfeature.Routes(cleanupHandler))

		triosHandler := triosfeature.NewHandler(svc.trios, logger)
		r.Mount("/trios", triosfeature.Routes(triosHandler))
	})

	return r, nil
}
