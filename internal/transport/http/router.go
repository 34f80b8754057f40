package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trip-planner-nosql/internal/config"
	"github.com/trip-planner-nosql/internal/transport/http/handler"
	appmiddleware "github.com/trip-planner-nosql/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// newBaseRouter carries the middleware stack and the endpoints every
// process exposes.
func newBaseRouter(cfg *config.Config, log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthH := handler.NewHealthHandler()
	r.Get("/health-check/{action}", healthH.Ping)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// NewUserRouter serves accounts, sessions and friend requests.
func NewUserRouter(cfg *config.Config, log *zap.Logger, deps UserDeps) http.Handler {
	r := newBaseRouter(cfg, log)

	authOpts := deps.Auth
	authOpts.AllowCookie = true
	authMw := appmiddleware.Authenticate(authOpts)

	// 5 requests/second, burst of 10, on endpoints open to credential stuffing
	// and spam.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userH := handler.NewUserHandler(deps.Users)
	sessionH := handler.NewSessionHandler(deps.Sessions, deps.TokenLifetime, cfg.AppEnv == "production")
	friendH := handler.NewFriendHandler(deps.Friends)

	r.Route("/user", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/", userH.Register)
		r.With(sensitiveRL.Limit).Post("/login", sessionH.Login)
		r.Post("/logout", sessionH.Logout)

		r.With(authMw).Get("/me", userH.Me)
		r.With(authMw).Patch("/me", userH.UpdateMe)
		r.Get("/{id}", userH.Get)
	})

	r.Route("/friend", func(r chi.Router) {
		r.Use(authMw)
		r.With(sensitiveRL.Limit).Post("/send", friendH.Send)
		r.Get("/show", friendH.Show)
		r.Patch("/respond/{id}", friendH.Respond)
	})

	return r
}

// NewTripRouter serves trip planning.
func NewTripRouter(cfg *config.Config, log *zap.Logger, deps TripDeps) http.Handler {
	r := newBaseRouter(cfg, log)
	tripH := handler.NewTripHandler(deps.Trips)

	r.Route("/trips", func(r chi.Router) {
		r.Use(appmiddleware.Authenticate(deps.Auth))
		r.Post("/", tripH.Create)
		r.Get("/", tripH.ListParticipating)
		r.Get("/created", tripH.ListCreated)
		r.Get("/{id}", tripH.Get)
		r.Patch("/{id}", tripH.Update)
	})

	return r
}

// NewNotificationRouter serves the caller's notifications at the root; the
// gateway strips its /notifications prefix.
func NewNotificationRouter(cfg *config.Config, log *zap.Logger, deps NotificationDeps) http.Handler {
	r := newBaseRouter(cfg, log)
	notifH := handler.NewNotificationHandler(deps.Notifications)

	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Authenticate(deps.Auth))
		r.Get("/", notifH.List)
		r.Get("/read", notifH.ListRead)
		r.Patch("/all", notifH.SetAllRead)
		r.Patch("/{id}/toggle", notifH.Toggle)
	})

	return r
}
