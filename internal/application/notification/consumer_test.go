package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/event"
	"github.com/trip-planner-nosql/internal/metrics"
	"github.com/trip-planner-nosql/internal/pkg/id"
	"go.uber.org/zap"
)

func encode(t *testing.T, v any) broker.Message {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return broker.Message{Topic: "test", Value: b}
}

func TestHandle_FriendRequestNotifiesReceiver(t *testing.T) {
	a, b := id.New(), id.New()
	s := newMemStore()
	c := NewConsumer(s, zap.NewNop())
	fr := &domain.FriendRequest{RequestID: id.New(), PartyA: a, PartyB: b, Status: domain.FriendRequestPending}

	require.NoError(t, c.Handle(context.Background(), encode(t, event.NewFriendRequest(event.ActionRequest, fr))))

	got := s.forUser(b)
	require.Len(t, got, 1)
	assert.Equal(t, event.CategoryFriendRequest, got[0].Type)
	assert.Equal(t, a, got[0].Data["partyA"])
	assert.Equal(t, domain.FriendRequestPending, got[0].Data["status"])
	assert.False(t, got[0].Read)
	assert.Empty(t, s.forUser(a))
}

func TestHandle_FriendResponseNotifiesRequester(t *testing.T) {
	a, b := id.New(), id.New()
	s := newMemStore()
	fr := &domain.FriendRequest{PartyA: a, PartyB: b, Status: domain.FriendRequestAccepted}

	require.NoError(t, NewConsumer(s, zap.NewNop()).Handle(context.Background(), encode(t, event.NewFriendRequest(event.ActionResponse, fr))))

	assert.Len(t, s.forUser(a), 1)
	assert.Empty(t, s.forUser(b))
}

func TestHandle_TripNotifiesEveryoneButCreator(t *testing.T) {
	creator, p1, p2 := id.New(), id.New(), id.New()
	s := newMemStore()
	trip := &domain.Trip{
		TripID:    id.New(),
		Name:      "Lisbon",
		CreatedBy: creator,
		Peoples: []domain.Participant{
			{UserID: p1, Role: domain.TripRoleMember},
			{UserID: p2, Role: domain.TripRoleGuest},
			{UserID: creator, Role: domain.TripRoleAdmin},
		},
	}

	require.NoError(t, NewConsumer(s, zap.NewNop()).Handle(context.Background(), encode(t, event.NewTrip(event.ActionCreateTrip, trip))))

	assert.Len(t, s.forUser(p1), 1)
	assert.Len(t, s.forUser(p2), 1)
	assert.Empty(t, s.forUser(creator))
	assert.Equal(t, "Lisbon", s.forUser(p1)[0].Data["name"])
}

func TestHandle_MalformedAndUnknownAreDropped(t *testing.T) {
	s := newMemStore()
	c := NewConsumer(s, zap.NewNop())
	ctx := context.Background()

	for _, raw := range []string{
		`{"category":"friend-request","event":"request"}`,
		`{"category":"friend-request","event":"request","friendRequest":null}`,
		`{"category":"friend-request","event":"request","friendRequest":{"partyA":"x"}}`,
		`{"category":"trip-planner","event":"create-trip","trip":{"peoples":[]}}`,
		`{"category":"friend-request","event":"poke","friendRequest":{}}`,
		`{"category":"chat","event":"message"}`,
	} {
		assert.NoError(t, c.Handle(ctx, broker.Message{Topic: "test", Value: []byte(raw)}), raw)
	}
	assert.Empty(t, s.items)
}

func TestHandle_WriteFailureContinuesWithOtherRecipients(t *testing.T) {
	creator, p1, p2 := id.New(), id.New(), id.New()
	s := newMemStore()
	s.failFor = p1
	trip := &domain.Trip{CreatedBy: creator, Peoples: []domain.Participant{{UserID: p1}, {UserID: p2}}}

	require.NoError(t, NewConsumer(s, zap.NewNop()).Handle(context.Background(), encode(t, event.NewTrip(event.ActionUpdate, trip))))

	assert.Empty(t, s.forUser(p1))
	assert.Len(t, s.forUser(p2), 1)
}

func TestRun_ConsumesEachTopicAndSurvivesGarbage(t *testing.T) {
	a, b, creator, p1 := id.New(), id.New(), id.New(), id.New()
	s := newMemStore()
	mem := broker.NewMemory(zap.NewNop())
	t.Cleanup(func() { _ = mem.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := testutil.ToFloat64(metrics.NotificationsCreated.WithLabelValues(event.CategoryTripPlanner))

	done := make(chan error, 1)
	go func() {
		done <- NewConsumer(s, zap.NewNop()).Run(ctx, mem, []string{"friend-request", "trip-planner"})
	}()

	require.NoError(t, mem.PublishRaw(ctx, "friend-request", []byte("not json")))
	require.NoError(t, mem.Publish(ctx, "friend-request",
		event.NewFriendRequest(event.ActionRequest, &domain.FriendRequest{PartyA: a, PartyB: b, Status: domain.FriendRequestPending})))
	require.NoError(t, mem.Publish(ctx, "trip-planner",
		event.NewTrip(event.ActionCreateTrip, &domain.Trip{CreatedBy: creator, Peoples: []domain.Participant{{UserID: p1}, {UserID: creator}}})))

	require.Eventually(t, func() bool {
		return len(s.forUser(b)) == 1 && len(s.forUser(p1)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsCreated.WithLabelValues(event.CategoryTripPlanner)))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

// topicSubscriber fails the listed topics and blocks on the rest until ctx
// ends, recording which loops observed cancellation.
type topicSubscriber struct {
	failures map[string]error
	stopped  chan string
}

func (s *topicSubscriber) Subscribe(ctx context.Context, topic string, _ broker.Handler) error {
	if err, ok := s.failures[topic]; ok {
		return err
	}
	<-ctx.Done()
	s.stopped <- topic
	return nil
}

func TestRun_OneTopicFailingStopsTheOthers(t *testing.T) {
	readErr := errors.New("redis read from friend-request: connection reset")
	sub := &topicSubscriber{
		failures: map[string]error{"friend-request": readErr},
		stopped:  make(chan string, 1),
	}

	done := make(chan error, 1)
	go func() {
		done <- NewConsumer(newMemStore(), zap.NewNop()).Run(context.Background(), sub, []string{"friend-request", "trip-planner"})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, readErr)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept blocking after a topic loop failed")
	}
	assert.Equal(t, "trip-planner", <-sub.stopped)
}

func TestRun_LoopEndingEarlyIsAnError(t *testing.T) {
	sub := &topicSubscriber{
		failures: map[string]error{"trip-planner": nil},
		stopped:  make(chan string, 1),
	}

	done := make(chan error, 1)
	go func() {
		done <- NewConsumer(newMemStore(), zap.NewNop()).Run(context.Background(), sub, []string{"friend-request", "trip-planner"})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trip-planner")
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept blocking after a topic loop ended")
	}
}
