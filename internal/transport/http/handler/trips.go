package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trip-planner-nosql/internal/application/trip"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/transport/http/middleware"
)

type TripHandler struct {
	svc trip.Service
}

func NewTripHandler(svc trip.Service) *TripHandler { return &TripHandler{svc: svc} }

func caller(r *http.Request, u *domain.User) trip.Caller {
	return trip.Caller{UserID: u.UserID, Token: middleware.TokenFromContext(r.Context())}
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), caller(r, me), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Success: true, Data: t, Message: "Trip created"})
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.UpdateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Update(r.Context(), caller(r, me), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), me.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TripHandler) ListParticipating(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListParticipating)
}

func (h *TripHandler) ListCreated(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListCreated)
}

func (h *TripHandler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, userID string) ([]domain.Trip, error)) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	trips, err := fetch(r.Context(), me.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	writeData(w, http.StatusOK, trips)
}
