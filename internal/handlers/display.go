package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/api"
	"github.com/glenwood/beacon/internal/middleware"
)

// DisplayHandler serves the wall-display pull API and the admin fleet view.
type DisplayHandler struct {
	displays *alerting.DisplayRegistry
}

// NewDisplayHandler creates a new display handler.
func NewDisplayHandler(displays *alerting.DisplayRegistry) *DisplayHandler {
	return &DisplayHandler{displays: displays}
}

// MessageRequest is the body for a one-off display message override.
type MessageRequest struct {
	Message string `json:"message" validate:"required,max=256"`
}

// SetupRoutes sets up display routes.
// Device endpoints: /api/display/{id}/text and /api/display/{id}/message.
func (h *DisplayHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/display/", h.handleDisplay)
	mux.HandleFunc("/api/displays", h.handleList)
}

// handleDisplay dispatches /api/display/{id}/{text|message}.
func (h *DisplayHandler) handleDisplay(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/display/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		api.RespondError(w, http.StatusNotFound, "Not found")
		return
	}

	id := parts[0]
	switch parts[1] {
	case "text":
		h.handleText(w, r, id)
	case "message":
		h.handleMessage(w, r, id)
	default:
		api.RespondError(w, http.StatusNotFound, "Not found")
	}
}

// handleText handles GET /api/display/{id}/text. This is the panel poll
// loop: the response carries the render state and the request itself is
// the device heartbeat. Unknown ids are registered on first poll.
func (h *DisplayHandler) handleText(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.RespondJSON(w, http.StatusOK, h.displays.State(id))
}

// handleMessage handles POST /api/display/{id}/message. Puts a custom
// MESSAGE on one panel without touching alert state or history.
func (h *DisplayHandler) handleMessage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req MessageRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrors := api.Validate(req); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	h.displays.SetMessage(id, req.Message)
	log.Printf("DisplayHandler: message override on %q by %s", id, middleware.GetUserFromContext(r.Context()))

	// Not State(id): that would stamp a device heartbeat for an admin call.
	api.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "display": id})
}

// handleList handles GET /api/displays: every known display with its
// render state and last poll age.
func (h *DisplayHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"displays": h.displays.Snapshot(),
	})
}
