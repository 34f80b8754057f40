package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-nosql/internal/application/user"
	"github.com/trip-planner-nosql/internal/domain"
)

// UserHandler serves registration and profile endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, u)
}

// Get returns the bare user object. Other services resolve identities
// through this endpoint and decode the body directly.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, me)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.Update(r.Context(), me.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, u)
}
