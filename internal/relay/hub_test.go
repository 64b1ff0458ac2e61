package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickchat/internal/config"
	"quickchat/internal/models"
)

// fakeSession records every emitted event in order.
type fakeSession struct {
	id string

	mu     sync.Mutex
	events []emitted
}

type emitted struct {
	event string
	data  interface{}
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Emit(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: event, data: data})
}

func (f *fakeSession) emittedEvents(name string) []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emitted
	for _, e := range f.events {
		if e.event == name {
			out = append(out, e)
		}
	}
	return out
}

// stubResolver serves canned users, or an error for unknown ids.
type stubResolver struct {
	users map[string]*models.User
}

var errNoSuchUser = errors.New("sender not found")

func (r *stubResolver) ResolveSender(_ context.Context, userID string) (*models.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, errNoSuchUser
	}
	return u, nil
}

func testUser(id uint, name string) *models.User {
	u := &models.User{Name: name, Email: name + "@example.com"}
	u.ID = id
	return u
}

func newTestHub(resolver SenderResolver) *Hub {
	return NewHub(NewMemoryPresence(), resolver, config.RelayConfig{ResolveTimeout: time.Second})
}

func join(h *Hub, id, identity string) *fakeSession {
	s := &fakeSession{id: id}
	h.Connect(s)
	h.Join(context.Background(), s, identity)
	return s
}

func TestJoinBroadcastsOnlineToOthersOnly(t *testing.T) {
	h := newTestHub(&stubResolver{})

	a := join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	// a was connected before b joined, so it sees b come online.
	online := a.emittedEvents(EventUserOnline)
	require.Len(t, online, 1)
	assert.Equal(t, "2", online[0].data)

	// The joining session never hears about itself.
	assert.Empty(t, b.emittedEvents(EventUserOnline))
}

func TestRejoinReplacesMapping(t *testing.T) {
	h := newTestHub(&stubResolver{})

	join(h, "sess-old", "1")
	join(h, "sess-new", "1")

	sid, err := h.presence.SessionFor(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "sess-new", sid)
}

func TestDisconnectEmitsOfflineExactlyOnce(t *testing.T) {
	h := newTestHub(&stubResolver{})

	a := join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	h.Disconnect(a)

	offline := b.emittedEvents(EventUserOffline)
	require.Len(t, offline, 1)
	assert.Equal(t, "1", offline[0].data)

	// An unrelated session that never joined produces no further events.
	c := &fakeSession{id: "sess-c"}
	h.Connect(c)
	h.Disconnect(c)
	assert.Len(t, b.emittedEvents(EventUserOffline), 1)
}

func TestRelayDropsPayloadWithoutContent(t *testing.T) {
	h := newTestHub(&stubResolver{users: map[string]*models.User{"1": testUser(1, "alice")}})

	join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	h.Relay(context.Background(), SendMessagePayload{SenderID: "1", ReceiverID: "2"})

	assert.Empty(t, b.emittedEvents(EventReceiveMessage))
}

func TestRelayDropsUnresolvableSender(t *testing.T) {
	h := newTestHub(&stubResolver{users: map[string]*models.User{}})

	a := join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	h.Relay(context.Background(), SendMessagePayload{SenderID: "1", ReceiverID: "2", Message: "hi"})

	assert.Empty(t, b.emittedEvents(EventReceiveMessage))
	assert.Empty(t, a.emittedEvents(EventMessageSent))
}

func TestRelayDeliversToBothRooms(t *testing.T) {
	alice := testUser(1, "alice")
	h := newTestHub(&stubResolver{users: map[string]*models.User{"1": alice}})

	a := join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h.Relay(context.Background(), SendMessagePayload{
		SenderID:   "1",
		ReceiverID: "2",
		Message:    "hi",
		CreatedAt:  sentAt,
	})

	recv := b.emittedEvents(EventReceiveMessage)
	require.Len(t, recv, 1)
	got := recv[0].data.(RelayedMessage)
	assert.Equal(t, "hi", got.Message)
	assert.Equal(t, "alice", got.Sender.Name)
	assert.Equal(t, "2", got.Receiver.ID)
	assert.Equal(t, sentAt, got.CreatedAt)

	echo := a.emittedEvents(EventMessageSent)
	require.Len(t, echo, 1)
	assert.Equal(t, got, echo[0].data.(RelayedMessage))

	// Dual delivery only: nothing else reaches the receiver's room.
	assert.Empty(t, b.emittedEvents(EventMessageSent))
}

func TestTypingCarriesSessionIDAndIdentity(t *testing.T) {
	h := newTestHub(&stubResolver{})

	a := join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	h.Typing(context.Background(), a, "2")

	typing := b.emittedEvents(EventTyping)
	require.Len(t, typing, 1)
	sig := typing[0].data.(TypingSignal)
	// The wire-compatible field stays the transport session id.
	assert.Equal(t, "sess-a", sig.From)
	assert.Equal(t, "1", sig.FromUserID)

	h.StopTyping(context.Background(), a, "2")
	require.Len(t, b.emittedEvents(EventStopTyping), 1)
}

func TestRelayScenarioHiFromAliceToBob(t *testing.T) {
	alice := testUser(1, "Alice")
	h := newTestHub(&stubResolver{users: map[string]*models.User{"1": alice}})

	a := join(h, "sess-a", "1")
	b := join(h, "sess-b", "2")

	h.Relay(context.Background(), SendMessagePayload{SenderID: "1", ReceiverID: "2", Message: "hi"})

	recv := b.emittedEvents(EventReceiveMessage)
	require.Len(t, recv, 1)
	msg := recv[0].data.(RelayedMessage)
	assert.Equal(t, "hi", msg.Message)
	assert.Equal(t, "Alice", msg.Sender.Name)

	echo := a.emittedEvents(EventMessageSent)
	require.Len(t, echo, 1)
	assert.Equal(t, msg.Message, echo[0].data.(RelayedMessage).Message)
}
