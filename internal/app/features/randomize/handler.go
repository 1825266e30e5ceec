// internal/app/features/randomize/handler.go
package randomize

import (
	"context"
	"net/http"

	"github.com/dalemusser/rantrio/internal/app/system/auditlog"
	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/dalemusser/rantrio/internal/app/system/httpjson"
	"github.com/dalemusser/rantrio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Runner runs one trio formation pass.
type Runner interface {
	Run(ctx context.Context) (formation.Result, error)
}

// Handler serves the manual formation trigger.
type Handler struct {
	Runner Runner
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a randomize Handler. audit may be nil.
func NewHandler(runner Runner, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Runner: runner, Audit: audit, Log: logger}
}

type response struct {
	Message       string `json:"message"`
	GroupsCreated *int   `json:"groups_created,omitempty"`
	Date          string `json:"date,omitempty"`
}

var messages = map[formation.Outcome]string{
	formation.OutcomeAlreadyFormed:     "groups already exist for today",
	formation.OutcomeNotEnoughUsers:    "not enough users",
	formation.OutcomeNotEnoughEligible: "not enough eligible users",
	formation.OutcomeFormed:            "group randomization completed successfully",
}

// Serve handles POST /randomize-groups.
//
// Every completed run answers 200 with a message; only a formed run adds
// groups_created and date. A failed run answers 500 and
//
//	{ "error":"internal server error", "details":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	res, err := h.Runner.Run(ctx)
	h.Audit.TriosRandomized(r.Context(), r, res, err)
	if err != nil {
		h.Log.Error("trio randomization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}

	body := response{Message: messages[res.Outcome]}
	if res.Outcome == formation.OutcomeFormed {
		n := res.GroupsCreated
		body.GroupsCreated = &n
		body.Date = res.Date
	}
	httpjson.Write(w, http.StatusOK, body)
}
