package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// DataEnvelope wraps successful responses of every endpoint except the bare
// user lookup that other services consume.
type DataEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// MessageEnvelope carries errors and data-less confirmations.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TokenData is the login payload.
type TokenData struct {
	Token string `json:"token"`
}

// UpdatedData reports how many records a bulk update changed.
type UpdatedData struct {
	Updated int `json:"updated"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, DataEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// currentUser returns the identity set by the auth middleware. Handlers behind
// it always have one; the check guards against a missing route wrapper.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return u, ok
}

// httpError maps a service error to a status code. The client sees the
// outermost message of the wrap chain; unmapped errors become a generic 500
// and are logged in full.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		middleware.Log(r.Context()).Error("upstream failure", zap.Error(err))
	default:
		middleware.Log(r.Context()).Error("unhandled error", zap.Error(err))
		writeError(w, status, "internal server error")
		return
	}
	msg, _, _ := strings.Cut(err.Error(), ": ")
	writeError(w, status, msg)
}
