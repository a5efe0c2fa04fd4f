package relay

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Router classifies inbound frames and drives registry updates, broadcasts
// and persistence submissions. It is stateless per frame: every frame is
// classified independently, and a frame accepted for processing runs to
// completion.
//
// Malformed frames are dropped silently. There is no per-peer error channel,
// so a hostile peer and a transient corruption look alike; neither gets a
// reply.
type Router struct {
	log         *slog.Logger
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	gateway     contract.IPersistenceGateway
}

func NewRouter(log *slog.Logger, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, gateway contract.IPersistenceGateway) *Router {
	return &Router{log: log, registry: registry, broadcaster: broadcaster, gateway: gateway}
}

// HandleOpen registers a freshly accepted connection.
func (r *Router) HandleOpen(conn contract.Conn) {
	r.registry.Register(conn)
}

// HandleFrame processes one inbound text frame.
//
// An untyped frame is relayed as a message even when the sender never sent
// an explicit join for that room: frames name their room and the relay
// trusts upstream authorization, so requiring a prior join would add a
// registry round-trip without tightening anything.
func (r *Router) HandleFrame(conn contract.Conn, raw []byte) {
	f, ok := event.Decode(raw)
	if !ok {
		r.log.Debug("Dropping malformed frame", "conn", conn.ID())
		return
	}

	room := domain.RoomID(f.Room)
	hash, ok := r.registry.ProfileOf(conn.ID())
	if !ok {
		hash = domain.ProfileHash(conn.Origin())
	}

	switch f.Kind() {
	case event.KindJoin:
		r.registry.SetRoom(conn, room)
		r.gateway.SubmitPresence(hash, true, time.Now().UTC())
		r.broadcaster.Broadcast(room, event.NewPresence(f.Room, hash))

	case event.KindTyping:
		if f.Typing == nil {
			r.log.Debug("Dropping typing frame without flag", "conn", conn.ID())
			return
		}
		r.broadcaster.Broadcast(room, event.NewTyping(f.Room, hash, *f.Typing))

	case event.KindMessage:
		if f.Payload == nil {
			r.log.Debug("Dropping message frame without payload", "conn", conn.ID())
			return
		}
		at := time.Now().UTC()
		// Broadcast first, persist independently: relay latency must not
		// depend on storage latency, and neither outcome gates the other.
		r.broadcaster.Broadcast(room, event.NewMessage(f.Room, *f.Payload, at))
		r.gateway.SubmitMessage(domain.Message{
			ID:      uuid.New(),
			Room:    room,
			Author:  hash,
			Payload: *f.Payload,
			At:      at,
		})
	}
}

// HandleClose tears down a connection's association. Idempotent: the
// transport read loop and the liveness monitor may both reach it for the
// same connection, only the first call has effect.
func (r *Router) HandleClose(conn contract.Conn) {
	room, hash, ok := r.registry.Remove(conn.ID())
	if !ok {
		return
	}
	_ = conn.Close()
	r.gateway.SubmitPresence(hash, false, time.Now().UTC())
	if room != "" {
		// Departure reuses the join presence shape: peers treat presence
		// events as idempotent membership pings.
		r.broadcaster.Broadcast(room, event.NewPresence(string(room), hash))
	}
}
