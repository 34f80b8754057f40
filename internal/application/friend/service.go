package friend

import (
	"context"
	"fmt"
	"time"

	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/event"
	"github.com/trip-planner-nosql/internal/pkg/id"
	"github.com/trip-planner-nosql/internal/pkg/validate"
)

type Service interface {
	Send(ctx context.Context, fromUserID string, req domain.SendFriendRequest) (*domain.FriendRequest, error)
	Respond(ctx context.Context, userID, requestID string, req domain.RespondFriendRequest) (*domain.FriendRequest, error)
	ListReceived(ctx context.Context, userID string) ([]domain.FriendRequest, error)
}

type friendRequestStore interface {
	Put(ctx context.Context, fr *domain.FriendRequest) error
	Get(ctx context.Context, requestID string) (*domain.FriendRequest, error)
	ListBetween(ctx context.Context, partyA, partyB string) ([]domain.FriendRequest, error)
	ListReceived(ctx context.Context, partyB, status string) ([]domain.FriendRequest, error)
	UpdateStatus(ctx context.Context, requestID, from, to string) (*domain.FriendRequest, error)
}

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo      friendRequestStore
	users     userGetter
	publisher broker.Publisher
	topic     string
}

type ServiceDeps struct {
	FriendRequestRepo friendRequestStore
	UserRepo          userGetter
	Publisher         broker.Publisher
	Topic             string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.FriendRequestRepo,
		users:     deps.UserRepo,
		publisher: deps.Publisher,
		topic:     deps.Topic,
	}
}

func (s *service) Send(ctx context.Context, fromUserID string, req domain.SendFriendRequest) (*domain.FriendRequest, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if req.PartyB == fromUserID {
		return nil, fmt.Errorf("Cannot send a friend request to yourself: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, req.PartyB); err != nil {
		return nil, fmt.Errorf("User not found: %w", err)
	}

	existing, err := s.repo.ListBetween(ctx, fromUserID, req.PartyB)
	if err != nil {
		return nil, err
	}
	for _, fr := range existing {
		if fr.Status == domain.FriendRequestPending || fr.Status == domain.FriendRequestAccepted {
			return nil, fmt.Errorf("Friend request already exists: %w", domain.ErrConflict)
		}
	}

	now := time.Now().UTC()
	fr := &domain.FriendRequest{
		RequestID: id.New(),
		PartyA:    fromUserID,
		PartyB:    req.PartyB,
		Status:    domain.FriendRequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, fr); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, event.ActionRequest, fr); err != nil {
		return nil, err
	}
	return fr, nil
}

func (s *service) Respond(ctx context.Context, userID, requestID string, req domain.RespondFriendRequest) (*domain.FriendRequest, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	fr, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("Friend request not found: %w", err)
	}
	// Only the receiver sees the request at all.
	if fr.PartyB != userID {
		return nil, fmt.Errorf("Friend request not found: %w", domain.ErrNotFound)
	}
	if fr.Status != domain.FriendRequestPending {
		return nil, fmt.Errorf("Friend request already %s: %w", fr.Status, domain.ErrConflict)
	}

	updated, err := s.repo.UpdateStatus(ctx, requestID, domain.FriendRequestPending, req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, event.ActionResponse, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListReceived(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.repo.ListReceived(ctx, userID, domain.FriendRequestPending)
}

func (s *service) publish(ctx context.Context, action string, fr *domain.FriendRequest) error {
	if err := s.publisher.Publish(ctx, s.topic, event.NewFriendRequest(action, fr)); err != nil {
		return fmt.Errorf("Friend request saved but event publish failed: %w: %w", domain.ErrUpstream, err)
	}
	return nil
}
