package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/api"
	"github.com/glenwood/beacon/internal/database"
	"github.com/glenwood/beacon/internal/middleware"
)

// DrillHandler manages the scheduled-drill CRUD surface. Firing itself
// happens in the background scheduler job, never here.
type DrillHandler struct {
	drills  *database.DrillStore
	allowed map[alerting.Action]bool
}

// NewDrillHandler creates a new drill handler with the action allow-list.
func NewDrillHandler(drills *database.DrillStore, actions []alerting.Action) *DrillHandler {
	allowed := make(map[alerting.Action]bool, len(actions))
	for _, a := range actions {
		allowed[alerting.NormalizeAction(string(a))] = true
	}
	return &DrillHandler{drills: drills, allowed: allowed}
}

// CreateDrillRequest is the drill creation body. RunAt accepts either an
// RFC3339 timestamp or unix seconds, because the admin UI sends the
// former and the provisioning scripts send the latter.
type CreateDrillRequest struct {
	Label  string      `json:"label" validate:"omitempty,max=128"`
	Mode   string      `json:"mode" validate:"omitempty,max=16"`
	Action string      `json:"action" validate:"required,max=32"`
	Zone   string      `json:"zone" validate:"omitempty,max=64"`
	RunAt  interface{} `json:"run_at" validate:"required"`
}

// SetupRoutes sets up drill routes.
func (h *DrillHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/drills", h.handleDrills)
	mux.HandleFunc("/api/drills/", h.handleDrillByID)
}

// handleDrills handles GET (list) and POST (create) on /api/drills.
func (h *DrillHandler) handleDrills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *DrillHandler) handleList(w http.ResponseWriter, r *http.Request) {
	drills, err := h.drills.ListScheduledDrills()
	if err != nil {
		log.Printf("DrillHandler: failed to list drills: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list drills")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"drills": drills,
	})
}

func (h *DrillHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateDrillRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrors := api.Validate(req); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	action := alerting.NormalizeAction(req.Action)
	if !h.allowed[action] {
		api.RespondValidationError(w, map[string]string{"action": fmt.Sprintf("invalid action %q", action)})
		return
	}

	runAt, err := parseRunAt(req.RunAt)
	if err != nil {
		api.RespondValidationError(w, map[string]string{"run_at": err.Error()})
		return
	}

	drill := &database.ScheduledDrill{
		Label:     req.Label,
		Mode:      string(alerting.NormalizeMode(req.Mode)),
		Action:    string(action),
		Zone:      alerting.NormalizeZone(req.Zone),
		RunAt:     runAt,
		Enabled:   true,
		CreatedBy: middleware.GetUserFromContext(r.Context()),
	}

	if err := h.drills.CreateScheduledDrill(drill); err != nil {
		log.Printf("DrillHandler: failed to create drill: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to create drill")
		return
	}

	log.Printf("DrillHandler: drill %d (%s %s) scheduled for %d by %s",
		drill.ID, drill.Mode, drill.Action, drill.RunAt, drill.CreatedBy)
	api.RespondJSON(w, http.StatusCreated, drill)
}

// handleDrillByID handles DELETE /api/drills/{id}.
func (h *DrillHandler) handleDrillByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/drills/")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid drill id")
		return
	}

	if err := h.drills.DeleteScheduledDrill(uint(id)); err != nil {
		log.Printf("DrillHandler: failed to delete drill %d: %v", id, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to delete drill")
		return
	}

	api.RespondNoContent(w)
}

// parseRunAt coerces a JSON run_at value into unix seconds.
func parseRunAt(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return 0, fmt.Errorf("must be a positive unix timestamp")
		}
		return int64(t), nil
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts.Unix(), nil
		}
		if n, err := strconv.ParseInt(t, 10, 64); err == nil && n > 0 {
			return n, nil
		}
		return 0, fmt.Errorf("must be RFC3339 or unix seconds")
	default:
		return 0, fmt.Errorf("must be RFC3339 or unix seconds")
	}
}
