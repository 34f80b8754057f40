package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/trip-planner-nosql/internal/domain"
)

// memStore is a map-backed Store with the same conditional semantics as the
// real stores.
type memStore struct {
	mu      sync.Mutex
	items   map[string]domain.Notification
	failFor string
}

func newMemStore() *memStore {
	return &memStore{items: map[string]domain.Notification{}}
}

func (s *memStore) Create(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.UserID == s.failFor {
		return fmt.Errorf("write refused for %s", n.UserID)
	}
	if _, ok := s.items[n.NotificationID]; ok {
		return domain.ErrConflict
	}
	s.items[n.NotificationID] = *n
	return nil
}

func (s *memStore) Get(_ context.Context, notificationID string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[notificationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &n, nil
}

func (s *memStore) ListByUser(_ context.Context, userID string, onlyRead bool) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.items {
		if n.UserID == userID && (!onlyRead || n.Read) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) SetRead(_ context.Context, userID, notificationID string, from, to bool) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[notificationID]
	if !ok || n.UserID != userID || n.Read != from {
		return nil, domain.ErrConflict
	}
	n.Read = to
	s.items[notificationID] = n
	return &n, nil
}

func (s *memStore) SetAllRead(_ context.Context, userID string, read bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for k, n := range s.items {
		if n.UserID == userID && n.Read != read {
			n.Read = read
			s.items[k] = n
			changed++
		}
	}
	return changed, nil
}

func (s *memStore) forUser(userID string) []domain.Notification {
	out, _ := s.ListByUser(context.Background(), userID, false)
	return out
}
