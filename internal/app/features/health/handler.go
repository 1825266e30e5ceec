package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/rantrio/internal/app/system/httpjson"
	"github.com/dalemusser/rantrio/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NATSConn is the part of *nats.Conn used to check the server round trip.
type NATSConn interface {
	FlushWithContext(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	NATS   NATSConn
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. nats may be nil when realtime
// notifications are disabled.
func NewHandler(client *mongo.Client, nats NATSConn, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		NATS:   nats,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	NATS     string `json:"nats,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// NATS is informational: a lost connection is reported but does not fail
// the check, since formation still succeeds without it.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		httpjson.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.NATS != nil {
		resp.NATS = "connected"
		if err := h.NATS.FlushWithContext(ctx); err != nil {
			h.Log.Warn("health-check: nats unavailable", zap.Error(err))
			resp.NATS = "disconnected"
		}
	}

	httpjson.Write(w, http.StatusOK, resp)
}
