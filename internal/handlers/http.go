package handlers

import (
	"net/http"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/api"
)

// Version is the service version reported by the health endpoint.
const Version = "1.0.0"

// HTTPHandler serves the basic service endpoints.
type HTTPHandler struct {
	state *alerting.State
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(state *alerting.State) *HTTPHandler {
	return &HTTPHandler{state: state}
}

// SetupRoutes configures the basic routes.
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth returns a simple health check response. The alert mode is
// included so a load balancer probe doubles as a cheap status peek.
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
		"mode":    string(h.state.Snapshot().Mode),
	})
}
