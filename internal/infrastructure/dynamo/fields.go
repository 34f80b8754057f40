package dynamo

// DynamoDB attribute and index names used in expressions across all repos.
const (
	fieldUserID    = "user_id"
	fieldEmail     = "email"
	fieldRead      = "read"
	fieldStatus    = "status"
	fieldPartyA    = "party_a"
	fieldPartyB    = "party_b"
	fieldCreatedBy = "created_by"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldExpiresAt = "expires_at"
	fieldToken     = "token"

	fieldParticipantIDs = "participant_ids"

	indexEmail           = "email-index"
	indexPartyA          = "party_a-index"
	indexPartyB          = "party_b-index"
	indexCreatedBy       = "created_by-index"
	indexUserNewestFirst = "user_id-created_at-index"
)
