package relay

import (
	"context"
	"log"
	"sync"
	"time"

	"quickchat/internal/config"
	"quickchat/internal/models"
)

// Session is one live transport connection attached to the hub. The
// websocket layer implements it; tests drive the hub with fakes.
type Session interface {
	// ID is the transport-assigned session id, unrelated to any account id.
	ID() string
	// Emit queues an event frame for delivery to the peer. Best effort: a
	// slow or closed peer may drop the frame.
	Emit(event string, data interface{})
}

// SenderResolver resolves an account id to its profile-bearing record. The
// relay re-resolves the sender on every send event instead of trusting the
// payload's sender data.
type SenderResolver interface {
	ResolveSender(ctx context.Context, userID string) (*models.User, error)
}

// Hub maintains the set of connected sessions, their identity rooms, and
// the presence registry, and fans live events out to them.
//
// All registry and room mutations happen synchronously under the hub lock;
// only the sender lookup in Relay waits on external I/O, and it does so
// before the lock is taken, bounded by the configured timeout.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]Session            // session id -> session, every connected socket
	rooms    map[string]map[string]Session // room name (identity) -> session id -> session
	joined   map[string]string             // session id -> room it joined

	presence       PresenceStore
	resolver       SenderResolver
	resolveTimeout time.Duration
}

// NewHub creates a hub around the given presence store and sender resolver.
func NewHub(presence PresenceStore, resolver SenderResolver, cfg config.RelayConfig) *Hub {
	timeout := cfg.ResolveTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Hub{
		sessions:       make(map[string]Session),
		rooms:          make(map[string]map[string]Session),
		joined:         make(map[string]string),
		presence:       presence,
		resolver:       resolver,
		resolveTimeout: timeout,
	}
}

// Connect registers a freshly opened session. The session is not reachable
// for point-to-point delivery until it joins with an identity.
func (h *Hub) Connect(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID()] = s
}

// Join places the session into the room named by identity, records the
// identity -> session mapping, and announces the identity online to every
// other connected session. A repeated join for the same identity replaces
// the previous mapping.
func (h *Hub) Join(ctx context.Context, s Session, identity string) {
	if identity == "" {
		return
	}

	h.mu.Lock()
	room := h.rooms[identity]
	if room == nil {
		room = make(map[string]Session)
		h.rooms[identity] = room
	}
	room[s.ID()] = s
	h.joined[s.ID()] = identity
	h.mu.Unlock()

	if err := h.presence.Set(ctx, identity, s.ID()); err != nil {
		log.Printf("presence: set %s failed: %v", identity, err)
	}

	h.broadcastExcept(s.ID(), EventUserOnline, identity)
}

// Disconnect removes the session from the hub and its room. If the session
// currently owns an identity in the presence registry, the identity is
// announced offline; otherwise the cleanup is silent.
func (h *Hub) Disconnect(s Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID())
	if room, ok := h.joined[s.ID()]; ok {
		delete(h.joined, s.ID())
		if members := h.rooms[room]; members != nil {
			delete(members, s.ID())
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	identity, err := h.presence.RemoveBySession(context.Background(), s.ID())
	if err != nil {
		log.Printf("presence: remove by session %s failed: %v", s.ID(), err)
		return
	}
	if identity == "" {
		// Session joined under no identity or was already replaced.
		return
	}
	h.broadcastExcept(s.ID(), EventUserOffline, identity)
}

// Relay validates a send-message event, re-resolves the sender, and emits
// the relayed message to the receiver's room as receive-message and to the
// sender's room as message-sent. The second emission is an intentional
// asynchronous confirmation alongside the HTTP response.
//
// Failures never surface to the caller: invalid payloads, unknown senders
// and lookup timeouts all drop the event. The durable write already carried
// the authoritative result.
func (h *Hub) Relay(ctx context.Context, p SendMessagePayload) {
	if !p.Valid() {
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, h.resolveTimeout)
	defer cancel()
	sender, err := h.resolver.ResolveSender(lookupCtx, p.SenderID)
	if err != nil {
		log.Printf("relay: dropping message %s -> %s, sender lookup failed: %v", p.SenderID, p.ReceiverID, err)
		return
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	msg := RelayedMessage{
		Sender:    sender.Card(),
		Receiver:  ReceiverRef{ID: p.ReceiverID},
		Message:   p.Message,
		Image:     p.Image,
		CreatedAt: createdAt,
	}

	h.emitToRoom(p.ReceiverID, EventReceiveMessage, msg)
	h.emitToRoom(p.SenderID, EventMessageSent, msg)
}

// Typing forwards a transient typing signal from the session to the target
// identity's room. Nothing is persisted and no TTL applies; the client is
// responsible for the eventual stop-typing.
func (h *Hub) Typing(ctx context.Context, s Session, receiverID string) {
	h.emitTyping(ctx, EventTyping, s, receiverID)
}

// StopTyping is the symmetric counterpart of Typing.
func (h *Hub) StopTyping(ctx context.Context, s Session, receiverID string) {
	h.emitTyping(ctx, EventStopTyping, s, receiverID)
}

func (h *Hub) emitTyping(ctx context.Context, event string, s Session, receiverID string) {
	if receiverID == "" {
		return
	}
	identity, err := h.presence.IdentityFor(ctx, s.ID())
	if err != nil {
		log.Printf("presence: identity lookup for session %s failed: %v", s.ID(), err)
	}
	h.emitToRoom(receiverID, event, TypingSignal{From: s.ID(), FromUserID: identity})
}

// emitToRoom delivers an event to every session in the named room. A room
// with no members is a silent miss.
func (h *Hub) emitToRoom(room, event string, data interface{}) {
	h.mu.RLock()
	members := make([]Session, 0, len(h.rooms[room]))
	for _, s := range h.rooms[room] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	for _, s := range members {
		s.Emit(event, data)
	}
}

// broadcastExcept delivers an event to every connected session except the
// named one. Used for presence transitions, which any open client may need
// for its roster indicators.
func (h *Hub) broadcastExcept(exceptID, event string, data interface{}) {
	h.mu.RLock()
	targets := make([]Session, 0, len(h.sessions))
	for id, s := range h.sessions {
		if id == exceptID {
			continue
		}
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.Emit(event, data)
	}
}
