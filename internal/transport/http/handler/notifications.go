package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-nosql/internal/application/notification"
	"github.com/trip-planner-nosql/internal/domain"
)

// NotificationHandler serves the caller's notifications.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	ns, err := h.svc.List(r.Context(), me.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ns)
}

func (h *NotificationHandler) ListRead(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	ns, err := h.svc.ListRead(r.Context(), me.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ns)
}

func (h *NotificationHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Toggle(r.Context(), me.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *NotificationHandler) SetAllRead(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.SetReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.svc.SetAllRead(r.Context(), me.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	state := "unread"
	if *req.Read {
		state = "read"
	}
	writeJSON(w, http.StatusOK, DataEnvelope{
		Success: true,
		Message: "All notifications marked as " + state,
		Data:    UpdatedData{Updated: n},
	})
}
