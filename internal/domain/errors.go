package domain

import "errors"

// Sentinel errors. Services wrap them with a user-facing message and the HTTP
// layer maps each one to a status code.
var (
	ErrBadRequest   = errors.New("bad request")                // 400
	ErrUnauthorized = errors.New("unauthorized")               // 401
	ErrForbidden    = errors.New("forbidden")                  // 403
	ErrNotFound     = errors.New("not found")                  // 404
	ErrConflict     = errors.New("conflict")                   // 409
	ErrUpstream     = errors.New("upstream dependency failed") // 500, broker or identity service
)
