package handlers

import (
	"net/http"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/api"
	"github.com/glenwood/beacon/internal/middleware"
)

// AlertHandler exposes the alert lifecycle: trigger, resolve, and the
// snapshot that admin consoles and kiosks poll.
type AlertHandler struct {
	dispatcher *alerting.Dispatcher
	state      *alerting.State
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(dispatcher *alerting.Dispatcher, state *alerting.State) *AlertHandler {
	return &AlertHandler{
		dispatcher: dispatcher,
		state:      state,
	}
}

// TriggerRequest is the activation request body.
type TriggerRequest struct {
	Mode   string `json:"mode" validate:"omitempty,max=16"`
	Action string `json:"action" validate:"required,max=32"`
	Zone   string `json:"zone" validate:"omitempty,max=64"`
}

// SetupRoutes sets up alert routes.
func (h *AlertHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/alerts/trigger", h.handleTrigger)
	mux.HandleFunc("/api/alerts/resolve", h.handleResolve)
	mux.HandleFunc("/api/alerts/latest", h.handleLatest)
}

// handleTrigger handles POST /api/alerts/trigger
func (h *AlertHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req TriggerRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if fieldErrors := api.Validate(req); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	actor := middleware.GetUserFromContext(r.Context())
	if actor == "" {
		actor = "unknown"
	}

	snap, err := h.dispatcher.Activate(
		alerting.Mode(req.Mode),
		alerting.Action(req.Action),
		req.Zone,
		actor,
	)
	if err != nil {
		api.RespondValidationError(w, map[string]string{"action": err.Error()})
		return
	}

	api.RespondJSON(w, http.StatusOK, snap)
}

// handleResolve handles POST /api/alerts/resolve. Resolving while idle
// still returns 200 with the idle snapshot.
func (h *AlertHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	actor := middleware.GetUserFromContext(r.Context())
	if actor == "" {
		actor = "unknown"
	}

	h.dispatcher.Resolve(actor)
	api.RespondJSON(w, http.StatusOK, h.state.Snapshot())
}

// handleLatest handles GET /api/alerts/latest. Open endpoint: kiosk
// dashboards poll it without credentials.
func (h *AlertHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.RespondJSON(w, http.StatusOK, h.state.Snapshot())
}
