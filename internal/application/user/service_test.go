package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error) {
	args := m.Called(ctx, userID, updates)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newService(us *mockUserStore) Service {
	return NewService(ServiceDeps{UserRepo: us, BcryptCost: bcrypt.MinCost})
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Name:        "Alice",
		DateOfBirth: "1990-04-12",
		Email:       "Alice@Example.com",
		Password:    "password123",
		Phone:       "555-0100",
		Gender:      domain.GenderFemale,
	}
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := newService(us).Register(context.Background(), baseReq())
	require.NoError(t, err)
	assert.True(t, id.Valid(u.UserID))
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, 1990, u.DateOfBirth.Year())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	us.AssertExpectations(t)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	_, err := newService(us).Register(context.Background(), baseReq())
	assert.ErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_ValidationFailures(t *testing.T) {
	cases := map[string]func(r *domain.CreateUserRequest){
		"short password": func(r *domain.CreateUserRequest) { r.Password = "123" },
		"bad email":      func(r *domain.CreateUserRequest) { r.Email = "not-an-email" },
		"bad gender":     func(r *domain.CreateUserRequest) { r.Gender = "robot" },
		"bad date":       func(r *domain.CreateUserRequest) { r.DateOfBirth = "12/04/1990" },
		"missing name":   func(r *domain.CreateUserRequest) { r.Name = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := baseReq()
			mutate(&req)
			_, err := newService(&mockUserStore{}).Register(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrBadRequest)
		})
	}
}

func TestRegister_LookupFailure(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errors.New("throttled"))

	_, err := newService(us).Register(context.Background(), baseReq())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

// --- Get ---

func TestGet_InvalidID(t *testing.T) {
	_, err := newService(&mockUserStore{}).Get(context.Background(), "not-a-ulid")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestGet_NotFound(t *testing.T) {
	uid := id.New()
	us := &mockUserStore{}
	us.On("Get", mock.Anything, uid).Return(nil, domain.ErrNotFound)

	_, err := newService(us).Get(context.Background(), uid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- Update ---

func TestUpdate_AllowedFieldsOnly(t *testing.T) {
	us := &mockUserStore{}
	name, dob := "Alicia", "1991-01-02"
	us.On("Update", mock.Anything, "U1", mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasDob := u[fieldDateOfBirth]
		return len(u) == 2 && u[fieldName] == "Alicia" && hasDob
	})).Return(&domain.User{UserID: "U1", Name: "Alicia"}, nil)

	u, err := newService(us).Update(context.Background(), "U1", domain.UpdateUserRequest{Name: &name, DateOfBirth: &dob})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)
	us.AssertExpectations(t)
}

func TestUpdate_NoFields(t *testing.T) {
	_, err := newService(&mockUserStore{}).Update(context.Background(), "U1", domain.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdate_InvalidGender(t *testing.T) {
	g := "robot"
	_, err := newService(&mockUserStore{}).Update(context.Background(), "U1", domain.UpdateUserRequest{Gender: &g})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
