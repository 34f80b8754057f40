package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/pkg/id"
	"github.com/trip-planner-nosql/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName         = "name"
	fieldPhone        = "phone"
	fieldGender       = "gender"
	fieldDateOfBirth  = "date_of_birth"
	fieldProfilePhoto = "profile_photo"
)

const dateLayout = "2006-01-02"

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error)
}

type service struct {
	repo       userStore
	bcryptCost int
}

type ServiceDeps struct {
	UserRepo userStore
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

func NewService(deps ServiceDeps) Service {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: deps.UserRepo, bcryptCost: cost}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("dateOfBirth must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}

	_, err = s.repo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("User already exists: %w", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Gender:       req.Gender,
		DateOfBirth:  dob,
		ProfilePhoto: req.ProfilePhoto,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	if !id.Valid(userID) {
		return nil, fmt.Errorf("Invalid user ID: %w", domain.ErrBadRequest)
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Gender != nil {
		updates[fieldGender] = *req.Gender
	}
	if req.ProfilePhoto != nil {
		updates[fieldProfilePhoto] = *req.ProfilePhoto
	}
	if req.DateOfBirth != nil {
		t, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("dateOfBirth must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
		}
		updates[fieldDateOfBirth] = t
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("No valid fields to update: %w", domain.ErrBadRequest)
	}
	return s.repo.Update(ctx, userID, updates)
}
