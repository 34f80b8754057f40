package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-nosql/internal/application/friend"
	"github.com/trip-planner-nosql/internal/domain"
)

type FriendHandler struct {
	svc friend.Service
}

func NewFriendHandler(svc friend.Service) *FriendHandler { return &FriendHandler{svc: svc} }

func (h *FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.SendFriendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fr, err := h.svc.Send(r.Context(), me.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Success: true, Data: fr, Message: "Friend request sent"})
}

// Show lists the pending requests the caller has received.
func (h *FriendHandler) Show(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	frs, err := h.svc.ListReceived(r.Context(), me.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if frs == nil {
		frs = []domain.FriendRequest{}
	}
	writeData(w, http.StatusOK, frs)
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.RespondFriendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fr, err := h.svc.Respond(r.Context(), me.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, fr)
}
