package domain

import "time"

// Notification is a per-recipient record created from a consumed domain event.
// Data holds the event's embedded payload verbatim.
type Notification struct {
	NotificationID string                 `json:"id" dynamodbav:"notification_id" bson:"_id"`
	UserID         string                 `json:"userId" dynamodbav:"user_id" bson:"user_id"`
	Type           string                 `json:"type" dynamodbav:"type" bson:"type"`
	Data           map[string]interface{} `json:"data" dynamodbav:"data" bson:"data"`
	Read           bool                   `json:"read" dynamodbav:"read" bson:"read"`
	CreatedAt      time.Time              `json:"createdAt" dynamodbav:"created_at" bson:"created_at"`
}

// SetReadRequest is the body of the bulk read-state endpoint. Read is a
// pointer so a missing field can be told apart from false.
type SetReadRequest struct {
	Read *bool `json:"read"`
}
