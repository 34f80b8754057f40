package domain

import "time"

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest links a requester (PartyA) to a receiver (PartyB).
type FriendRequest struct {
	RequestID string    `json:"id" dynamodbav:"request_id"`
	PartyA    string    `json:"partyA" dynamodbav:"party_a"`
	PartyB    string    `json:"partyB" dynamodbav:"party_b"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type SendFriendRequest struct {
	PartyB string `json:"partyB" validate:"required,ulid"`
}

type RespondFriendRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
