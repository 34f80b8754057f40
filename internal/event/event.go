// Package event defines the domain events exchanged over the broker and the
// decoder the notification consumer uses to turn raw messages into recipients.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/pkg/validate"
)

const (
	CategoryFriendRequest = "friend-request"
	CategoryTripPlanner   = "trip-planner"

	ActionRequest    = "request"
	ActionResponse   = "response"
	ActionCreateTrip = "create-trip"
	ActionUpdate     = "update"
)

var (
	// ErrUnknownEvent is returned for a (category, event) pair with no handler.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrMalformed is returned when the envelope or its payload does not match
	// the schema of its tag.
	ErrMalformed = errors.New("malformed event")
)

type FriendRequestEvent struct {
	Category      string                `json:"category"`
	Event         string                `json:"event"`
	FriendRequest *domain.FriendRequest `json:"friendRequest"`
}

type TripEvent struct {
	Category string       `json:"category"`
	Event    string       `json:"event"`
	Trip     *domain.Trip `json:"trip"`
}

func NewFriendRequest(action string, fr *domain.FriendRequest) FriendRequestEvent {
	return FriendRequestEvent{Category: CategoryFriendRequest, Event: action, FriendRequest: fr}
}

func NewTrip(action string, t *domain.Trip) TripEvent {
	return TripEvent{Category: CategoryTripPlanner, Event: action, Trip: t}
}

// Decoded is the consumer's view of an event: who must be notified and the
// payload to store, kept as the producer sent it.
type Decoded struct {
	Category   string
	Action     string
	Recipients []string
	Payload    map[string]interface{}
}

type envelope struct {
	Category      string          `json:"category"`
	Event         string          `json:"event"`
	FriendRequest json.RawMessage `json:"friendRequest"`
	Trip          json.RawMessage `json:"trip"`
}

type friendRequestSchema struct {
	PartyA string `json:"partyA" validate:"required"`
	PartyB string `json:"partyB" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type tripSchema struct {
	CreatedBy string `json:"createdBy" validate:"required"`
	Peoples   []struct {
		UserID string `json:"userId" validate:"required"`
	} `json:"peoples" validate:"dive"`
}

// Decode parses a raw broker message. Unknown tags yield ErrUnknownEvent,
// schema violations ErrMalformed.
func Decode(raw []byte) (*Decoded, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Category {
	case CategoryFriendRequest:
		return decodeFriendRequest(env)
	case CategoryTripPlanner:
		return decodeTrip(env)
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownEvent, env.Category, env.Event)
}

func decodeFriendRequest(env envelope) (*Decoded, error) {
	if env.Event != ActionRequest && env.Event != ActionResponse {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownEvent, env.Category, env.Event)
	}
	var fr friendRequestSchema
	payload, err := decodePayload(env.FriendRequest, &fr)
	if err != nil {
		return nil, fmt.Errorf("friendRequest: %w", err)
	}
	recipient := fr.PartyB
	if env.Event == ActionResponse {
		recipient = fr.PartyA
	}
	return &Decoded{
		Category:   env.Category,
		Action:     env.Event,
		Recipients: []string{recipient},
		Payload:    payload,
	}, nil
}

func decodeTrip(env envelope) (*Decoded, error) {
	if env.Event != ActionCreateTrip && env.Event != ActionUpdate {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownEvent, env.Category, env.Event)
	}
	var t tripSchema
	payload, err := decodePayload(env.Trip, &t)
	if err != nil {
		return nil, fmt.Errorf("trip: %w", err)
	}
	seen := map[string]bool{t.CreatedBy: true}
	var recipients []string
	for _, p := range t.Peoples {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		recipients = append(recipients, p.UserID)
	}
	return &Decoded{
		Category:   env.Category,
		Action:     env.Event,
		Recipients: recipients,
		Payload:    payload,
	}, nil
}

// decodePayload validates raw against schema and also returns it as a generic
// object for storage.
func decodePayload(raw json.RawMessage, schema interface{}) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return payload, nil
}
