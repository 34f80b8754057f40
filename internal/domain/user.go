package domain

import "time"

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is both the stored account and the identity attached to authenticated
// requests. PasswordHash never leaves the users service.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	Gender       string    `json:"gender" dynamodbav:"gender"`
	DateOfBirth  time.Time `json:"dateOfBirth" dynamodbav:"date_of_birth"`
	ProfilePhoto *string   `json:"profilePhoto,omitempty" dynamodbav:"profile_photo"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Name         string  `json:"name" validate:"required"`
	DateOfBirth  string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6,max=128"`
	Phone        string  `json:"phone" validate:"required"`
	Gender       string  `json:"gender" validate:"required,oneof=male female other"`
	ProfilePhoto *string `json:"profilePhoto"`
}

type UpdateUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	DateOfBirth  *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Phone        *string `json:"phone" validate:"omitempty,min=1"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=male female other"`
	ProfilePhoto *string `json:"profilePhoto"`
}
