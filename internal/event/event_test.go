package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-nosql/internal/domain"
)

func TestDecode_FriendRequest(t *testing.T) {
	raw := []byte(`{"category":"friend-request","event":"request","friendRequest":{"partyA":"A","partyB":"B","status":"pending"}}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, CategoryFriendRequest, d.Category)
	assert.Equal(t, []string{"B"}, d.Recipients)
	assert.Equal(t, map[string]interface{}{"partyA": "A", "partyB": "B", "status": "pending"}, d.Payload)
}

func TestDecode_FriendResponse_NotifiesRequester(t *testing.T) {
	raw := []byte(`{"category":"friend-request","event":"response","friendRequest":{"partyA":"A","partyB":"B","status":"accepted"}}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, d.Recipients)
}

func TestDecode_Trip_ExcludesCreatorAndDuplicates(t *testing.T) {
	raw := []byte(`{"category":"trip-planner","event":"create-trip","trip":{"id":"T1","createdBy":"A",
		"peoples":[{"userId":"A","role":"admin"},{"userId":"B","role":"member"},{"userId":"C","role":"guest"},{"userId":"B","role":"guest"}]}}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, d.Recipients)
	assert.Equal(t, "T1", d.Payload["id"])
}

func TestDecode_ProducerEventsRoundTrip(t *testing.T) {
	fr := &domain.FriendRequest{RequestID: "R1", PartyA: "A", PartyB: "B", Status: domain.FriendRequestPending}
	raw, err := json.Marshal(NewFriendRequest(ActionRequest, fr))
	require.NoError(t, err)

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, d.Recipients)
	assert.Equal(t, "R1", d.Payload["id"])

	trip := &domain.Trip{TripID: "T1", CreatedBy: "A", Peoples: []domain.Participant{{UserID: "B", Role: domain.TripRoleMember}}}
	raw, err = json.Marshal(NewTrip(ActionUpdate, trip))
	require.NoError(t, err)

	d, err = Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, d.Action)
	assert.Equal(t, []string{"B"}, d.Recipients)
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"category":`,
		"missing payload":  `{"category":"friend-request","event":"request"}`,
		"null payload":     `{"category":"friend-request","event":"request","friendRequest":null}`,
		"missing partyB":   `{"category":"friend-request","event":"request","friendRequest":{"partyA":"A","status":"pending"}}`,
		"payload not obj":  `{"category":"friend-request","event":"request","friendRequest":"A->B"}`,
		"trip no creator":  `{"category":"trip-planner","event":"update","trip":{"peoples":[]}}`,
		"trip bad peoples": `{"category":"trip-planner","event":"update","trip":{"createdBy":"A","peoples":[{"role":"guest"}]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	for _, raw := range []string{
		`{"category":"chat","event":"message"}`,
		`{"category":"friend-request","event":"deleted","friendRequest":{"partyA":"A","partyB":"B","status":"x"}}`,
		`{}`,
	} {
		_, err := Decode([]byte(raw))
		assert.ErrorIs(t, err, ErrUnknownEvent, raw)
	}
}
