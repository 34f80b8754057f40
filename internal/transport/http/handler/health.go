package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler answers liveness probes from the gateway and orchestrator.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch action := chi.URLParam(r, "action"); action {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "pong"})
	default:
		writeError(w, http.StatusBadRequest, "unknown health-check action: "+action)
	}
}
