// internal/app/features/trios/handler.go
package trios

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/httpjson"
	"github.com/dalemusser/rantrio/internal/app/system/timeouts"
	"github.com/dalemusser/rantrio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Reader loads the trios and batch record for a date.
type Reader interface {
	ListByDate(ctx context.Context, date string) ([]models.Trio, error)
	GetBatch(ctx context.Context, date string) (models.FormationBatch, error)
}

// Handler serves read-only views of formed trios.
type Handler struct {
	Store Reader
	Log   *zap.Logger
}

// NewHandler constructs a trios Handler.
func NewHandler(store Reader, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger}
}

type response struct {
	Date  string                 `json:"date"`
	Batch *models.FormationBatch `json:"batch"`
	Trios []models.Trio          `json:"trios"`
}

// ServeDate handles GET /trios/{date}. A date with no formation answers
// 200 with a null batch and an empty list.
func (h *Handler) ServeDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid date", "expected YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	resp := response{Date: date}
	batch, err := h.Store.GetBatch(ctx, date)
	switch {
	case err == nil:
		resp.Batch = &batch
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		h.Log.Error("loading formation batch failed", zap.String("date", date), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}

	resp.Trios, err = h.Store.ListByDate(ctx, date)
	if err != nil {
		h.Log.Error("listing trios failed", zap.String("date", date), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}

	httpjson.Write(w, http.StatusOK, resp)
}
