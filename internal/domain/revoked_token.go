package domain

import "time"

// RevokedToken is a bearer token invalidated at logout. ExpiresAt comes from
// the token's own exp claim; the record is useless after it and may be pruned.
type RevokedToken struct {
	Token     string    `json:"token" dynamodbav:"token"`
	ExpiresAt time.Time `json:"expiresAt" dynamodbav:"-"`
	// TTL is ExpiresAt in Unix seconds, used as the DynamoDB TTL attribute.
	TTL       int64     `json:"-" dynamodbav:"expires_at"`
	RevokedAt time.Time `json:"revokedAt" dynamodbav:"revoked_at"`
}
