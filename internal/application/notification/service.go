package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/trip-planner-nosql/internal/domain"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	ListRead(ctx context.Context, userID string) ([]domain.Notification, error)
	Toggle(ctx context.Context, userID, notificationID string) (*domain.Notification, error)
	SetAllRead(ctx context.Context, userID string, req domain.SetReadRequest) (int, error)
}

// Store persists notifications. Both the DynamoDB and MongoDB stores
// satisfy it.
type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	// ListByUser returns the user's notifications newest first, only the
	// read ones when onlyRead is set.
	ListByUser(ctx context.Context, userID string, onlyRead bool) ([]domain.Notification, error)
	// SetRead flips read from -> to, failing with ErrConflict when the stored
	// value is no longer from.
	SetRead(ctx context.Context, userID, notificationID string, from, to bool) (*domain.Notification, error)
	SetAllRead(ctx context.Context, userID string, read bool) (int, error)
}

type service struct {
	repo Store
}

func NewService(repo Store) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.list(ctx, userID, false)
}

func (s *service) ListRead(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.list(ctx, userID, true)
}

func (s *service) list(ctx context.Context, userID string, onlyRead bool) ([]domain.Notification, error) {
	ns, err := s.repo.ListByUser(ctx, userID, onlyRead)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

func (s *service) Toggle(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Notification not found: %w", err)
	}
	if err != nil {
		return nil, err
	}
	// Another user's notification is reported exactly like a missing one.
	if n.UserID != userID {
		return nil, fmt.Errorf("Notification not found: %w", domain.ErrNotFound)
	}
	updated, err := s.repo.SetRead(ctx, userID, notificationID, n.Read, !n.Read)
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("Notification was modified concurrently: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) SetAllRead(ctx context.Context, userID string, req domain.SetReadRequest) (int, error) {
	if req.Read == nil {
		return 0, fmt.Errorf("read must be a boolean: %w", domain.ErrBadRequest)
	}
	return s.repo.SetAllRead(ctx, userID, *req.Read)
}
