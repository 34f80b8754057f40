package domain

import "time"

const (
	TripRoleAdmin  = "admin"
	TripRoleMember = "member"
	TripRoleGuest  = "guest"

	TripStatusTentative = "tentative"

	ScheduleStatusPending   = "pending"
	ScheduleStatusCompleted = "completed"
)

type Schedule struct {
	ScheduleID  string     `json:"id" dynamodbav:"id"`
	Status      string     `json:"status" dynamodbav:"status"`
	CompletedOn *time.Time `json:"completedOn,omitempty" dynamodbav:"completed_on"`
	TargetTime  time.Time  `json:"targetTime" dynamodbav:"target_time"`
}

type Participant struct {
	UserID string `json:"userId" dynamodbav:"user_id"`
	Role   string `json:"role" dynamodbav:"role"`
	Status string `json:"status" dynamodbav:"status"`
}

type Trip struct {
	TripID    string        `json:"id" dynamodbav:"trip_id"`
	Name      string        `json:"name" dynamodbav:"name"`
	StartDate time.Time     `json:"startDate" dynamodbav:"start_date"`
	EndDate   time.Time     `json:"endDate" dynamodbav:"end_date"`
	Schedules []Schedule    `json:"schedules" dynamodbav:"schedules"`
	Places    []string      `json:"places" dynamodbav:"places"`
	CreatedBy string        `json:"createdBy" dynamodbav:"created_by"`
	Peoples   []Participant `json:"peoples" dynamodbav:"peoples"`
	// ParticipantIDs mirrors Peoples[].UserID so a filter can match membership.
	ParticipantIDs []string  `json:"-" dynamodbav:"participant_ids,stringset,omitempty"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// HasMember reports whether userID created or participates in the trip.
func (t *Trip) HasMember(userID string) bool {
	if t.CreatedBy == userID {
		return true
	}
	for _, p := range t.Peoples {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

type ScheduleInput struct {
	ScheduleID string `json:"id" validate:"required"`
	Status     string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	TargetTime string `json:"targetTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	// CompletedOn is only accepted together with status completed.
	CompletedOn string `json:"completedOn,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type ParticipantInput struct {
	UserID string `json:"userId" validate:"required,ulid"`
	Role   string `json:"role" validate:"required,oneof=admin member guest"`
	Status string `json:"status" validate:"omitempty,oneof=accept decline tentative"`
}

type CreateTripRequest struct {
	Name      string             `json:"name" validate:"required"`
	StartDate string             `json:"startDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate   string             `json:"endDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Schedules []ScheduleInput    `json:"schedules" validate:"omitempty,dive"`
	Places    []string           `json:"places" validate:"omitempty,dive,required"`
	Peoples   []ParticipantInput `json:"peoples" validate:"omitempty,dive"`
}

type UpdateTripRequest struct {
	Name      *string             `json:"name" validate:"omitempty,min=1"`
	StartDate *string             `json:"startDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate   *string             `json:"endDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Schedules *[]ScheduleInput    `json:"schedules" validate:"omitempty,dive"`
	Places    *[]string           `json:"places" validate:"omitempty,dive,required"`
	Peoples   *[]ParticipantInput `json:"peoples" validate:"omitempty,dive"`
}

// Empty reports whether the update carries no fields.
func (r UpdateTripRequest) Empty() bool {
	return r.Name == nil && r.StartDate == nil && r.EndDate == nil &&
		r.Schedules == nil && r.Places == nil && r.Peoples == nil
}
