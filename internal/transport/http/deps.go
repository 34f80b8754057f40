package http

import (
	"time"

	"github.com/trip-planner-nosql/internal/application/friend"
	"github.com/trip-planner-nosql/internal/application/notification"
	"github.com/trip-planner-nosql/internal/application/session"
	"github.com/trip-planner-nosql/internal/application/trip"
	"github.com/trip-planner-nosql/internal/application/user"
	appmiddleware "github.com/trip-planner-nosql/internal/transport/http/middleware"
)

// UserDeps are the services behind the users API. Auth.AllowCookie is forced
// on for this service.
type UserDeps struct {
	Users    user.Service
	Sessions session.Service
	Friends  friend.Service
	Auth     appmiddleware.AuthOptions
	// TokenLifetime bounds the login cookie; it matches the JWT expiry.
	TokenLifetime time.Duration
}

type TripDeps struct {
	Trips trip.Service
	Auth  appmiddleware.AuthOptions
}

type NotificationDeps struct {
	Notifications notification.Service
	Auth          appmiddleware.AuthOptions
}
