// internal/app/features/cleanup/handler.go
package cleanup

import (
	"context"
	"net/http"

	"github.com/dalemusser/rantrio/internal/app/system/auditlog"
	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/app/system/httpjson"
	"github.com/dalemusser/rantrio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// RemovalCounter receives the number of documents a cleanup removed.
type RemovalCounter interface {
	ContentRemoved(n int64)
}

// Handler serves the manual expired content cleanup.
type Handler struct {
	Cleaner formation.ContentCleaner
	Counter RemovalCounter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler constructs a cleanup Handler. counter and audit may be nil.
func NewHandler(cleaner formation.ContentCleaner, counter RemovalCounter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Cleaner: cleaner, Counter: counter, Audit: audit, Log: logger}
}

type response struct {
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

// Serve handles POST /cleanup-expired-content.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	removed, err := h.Cleaner.CleanupExpired(ctx)
	h.Audit.ContentCleanup(r.Context(), r, removed, err)
	if err != nil {
		h.Log.Error("expired content cleanup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}
	if h.Counter != nil {
		h.Counter.ContentRemoved(removed)
	}

	httpjson.Write(w, http.StatusOK, response{
		Message: "expired content cleanup completed successfully",
		Removed: removed,
	})
}
