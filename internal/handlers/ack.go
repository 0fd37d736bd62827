package handlers

import (
	"net/http"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/api"
	"github.com/glenwood/beacon/internal/metrics"
)

// AckHandler receives station acknowledgments and serves the live tally.
// Both endpoints are open: stations have no credentials and the summary
// is rendered on the same unauthenticated kiosk dashboards.
type AckHandler struct {
	acks *alerting.AckTracker
}

// NewAckHandler creates a new acknowledgment handler.
func NewAckHandler(acks *alerting.AckTracker) *AckHandler {
	return &AckHandler{acks: acks}
}

// AckRequest is the acknowledgment body. Station firmware sometimes posts
// an empty body; that records as station "unknown".
type AckRequest struct {
	Station string `json:"station" validate:"omitempty,max=128"`
}

// SetupRoutes sets up acknowledgment routes.
func (h *AckHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/acknowledge", h.handleAcknowledge)
	mux.HandleFunc("/api/acknowledge/summary", h.handleSummary)
}

// handleAcknowledge handles POST /api/acknowledge. Always answers ok:
// a station pressing its button during idle is a no-op, not an error,
// because firmware retries on anything else.
func (h *AckHandler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AckRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrors := api.Validate(req); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	h.acks.Record(req.Station)
	metrics.Acknowledgments.Inc()

	api.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSummary handles GET /api/acknowledge/summary: the tally scoped to
// the current activation only.
func (h *AckHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.RespondJSON(w, http.StatusOK, h.acks.Summarize())
}
