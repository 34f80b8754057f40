package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/event"
	"github.com/trip-planner-nosql/internal/pkg/id"
	"github.com/trip-planner-nosql/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, caller Caller, req domain.CreateTripRequest) (*domain.Trip, error)
	Update(ctx context.Context, caller Caller, tripID string, req domain.UpdateTripRequest) (*domain.Trip, error)
	Get(ctx context.Context, userID, tripID string) (*domain.Trip, error)
	ListCreated(ctx context.Context, userID string) ([]domain.Trip, error)
	ListParticipating(ctx context.Context, userID string) ([]domain.Trip, error)
}

// Caller is the authenticated user and the bearer token used to look up
// other users on their behalf.
type Caller struct {
	UserID string
	Token  string
}

type tripStore interface {
	Put(ctx context.Context, t *domain.Trip) error
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Trip, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, userID, bearer string) (*domain.User, error)
}

type service struct {
	repo      tripStore
	identity  identityResolver
	publisher broker.Publisher
	topic     string
}

type ServiceDeps struct {
	TripRepo  tripStore
	Identity  identityResolver
	Publisher broker.Publisher
	Topic     string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.TripRepo,
		identity:  deps.Identity,
		publisher: deps.Publisher,
		topic:     deps.Topic,
	}
}

func (s *service) Create(ctx context.Context, caller Caller, req domain.CreateTripRequest) (*domain.Trip, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	schedules, err := toSchedules(req.Schedules)
	if err != nil {
		return nil, err
	}
	peoples := toParticipants(req.Peoples, caller.UserID)
	if err := s.verifyParticipants(ctx, caller, peoples); err != nil {
		return nil, err
	}
	peoples = append(peoples, domain.Participant{
		UserID: caller.UserID,
		Role:   domain.TripRoleAdmin,
		Status: domain.TripStatusTentative,
	})

	now := time.Now().UTC()
	t := &domain.Trip{
		TripID:    id.New(),
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Schedules: schedules,
		Places:    req.Places,
		CreatedBy: caller.UserID,
		Peoples:   peoples,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, event.ActionCreateTrip, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, caller Caller, tripID string, req domain.UpdateTripRequest) (*domain.Trip, error) {
	if req.Empty() {
		return nil, fmt.Errorf("No valid fields to update: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	t, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("Trip not found: %w", err)
	}
	if t.CreatedBy != caller.UserID {
		return nil, fmt.Errorf("Only the trip creator can update it: %w", domain.ErrForbidden)
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	startStr, endStr := t.StartDate.Format(time.RFC3339), t.EndDate.Format(time.RFC3339)
	if req.StartDate != nil {
		startStr = *req.StartDate
	}
	if req.EndDate != nil {
		endStr = *req.EndDate
	}
	if t.StartDate, t.EndDate, err = parseRange(startStr, endStr); err != nil {
		return nil, err
	}
	if req.Schedules != nil {
		if t.Schedules, err = toSchedules(*req.Schedules); err != nil {
			return nil, err
		}
	}
	if req.Places != nil {
		t.Places = *req.Places
	}
	if req.Peoples != nil {
		peoples := toParticipants(*req.Peoples, t.CreatedBy)
		if err := s.verifyParticipants(ctx, caller, peoples); err != nil {
			return nil, err
		}
		t.Peoples = append(peoples, creatorEntry(t))
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, event.ActionUpdate, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, userID, tripID string) (*domain.Trip, error) {
	t, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("Trip not found: %w", err)
	}
	if !t.HasMember(userID) {
		return nil, fmt.Errorf("Trip not found: %w", domain.ErrNotFound)
	}
	return t, nil
}

func (s *service) ListCreated(ctx context.Context, userID string) ([]domain.Trip, error) {
	return s.repo.ListByCreator(ctx, userID)
}

func (s *service) ListParticipating(ctx context.Context, userID string) ([]domain.Trip, error) {
	return s.repo.ListByParticipant(ctx, userID)
}

func (s *service) verifyParticipants(ctx context.Context, caller Caller, peoples []domain.Participant) error {
	for _, p := range peoples {
		if _, err := s.identity.Resolve(ctx, p.UserID, caller.Token); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("Participant %s not found: %w", p.UserID, domain.ErrNotFound)
			}
			return fmt.Errorf("verify participant %s: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *service) publish(ctx context.Context, action string, t *domain.Trip) error {
	if err := s.publisher.Publish(ctx, s.topic, event.NewTrip(action, t)); err != nil {
		return fmt.Errorf("Trip saved but event publish failed: %w: %w", domain.ErrUpstream, err)
	}
	return nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("Invalid startDate: %w", domain.ErrBadRequest)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("Invalid endDate: %w", domain.ErrBadRequest)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("endDate must not be before startDate: %w", domain.ErrBadRequest)
	}
	return start.UTC(), end.UTC(), nil
}

func toSchedules(in []domain.ScheduleInput) ([]domain.Schedule, error) {
	out := make([]domain.Schedule, 0, len(in))
	for _, si := range in {
		target, err := time.Parse(time.RFC3339, si.TargetTime)
		if err != nil {
			return nil, fmt.Errorf("Invalid schedule targetTime: %w", domain.ErrBadRequest)
		}
		status := si.Status
		if status == "" {
			status = domain.ScheduleStatusPending
		}
		sched := domain.Schedule{ScheduleID: si.ScheduleID, Status: status, TargetTime: target.UTC()}
		if si.CompletedOn != "" {
			if status != domain.ScheduleStatusCompleted {
				return nil, fmt.Errorf("Schedule %s has completedOn but is not completed: %w", si.ScheduleID, domain.ErrBadRequest)
			}
			done, err := time.Parse(time.RFC3339, si.CompletedOn)
			if err != nil {
				return nil, fmt.Errorf("Invalid schedule completedOn: %w", domain.ErrBadRequest)
			}
			done = done.UTC()
			sched.CompletedOn = &done
		}
		out = append(out, sched)
	}
	return out, nil
}

// toParticipants de-duplicates by user id and drops the creator, who is
// always re-added as admin.
func toParticipants(in []domain.ParticipantInput, creatorID string) []domain.Participant {
	seen := map[string]bool{creatorID: true}
	out := make([]domain.Participant, 0, len(in)+1)
	for _, p := range in {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		status := p.Status
		if status == "" {
			status = domain.TripStatusTentative
		}
		out = append(out, domain.Participant{UserID: p.UserID, Role: p.Role, Status: status})
	}
	return out
}

func creatorEntry(t *domain.Trip) domain.Participant {
	for _, p := range t.Peoples {
		if p.UserID == t.CreatedBy {
			return p
		}
	}
	return domain.Participant{UserID: t.CreatedBy, Role: domain.TripRoleAdmin, Status: domain.TripStatusTentative}
}
