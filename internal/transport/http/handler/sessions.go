package handler

import (
	"net/http"
	"time"

	"github.com/trip-planner-nosql/internal/application/session"
	"github.com/trip-planner-nosql/internal/transport/http/middleware"
)

// SessionHandler issues and revokes bearer tokens.
type SessionHandler struct {
	svc      session.Service
	lifetime time.Duration
	secure   bool
}

// NewSessionHandler builds the handler. lifetime bounds the token cookie;
// secure marks it HTTPS-only.
func NewSessionHandler(svc session.Service, lifetime time.Duration, secure bool) *SessionHandler {
	return &SessionHandler{svc: svc, lifetime: lifetime, secure: secure}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(w, http.StatusOK, TokenData{Token: token})
}

// Logout revokes the presented token. It is not behind the auth middleware,
// so an already-expired token can still be logged out.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r, true)
	if err := h.svc.Logout(r.Context(), token); err != nil {
		httpError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Logged out successfully"})
}
