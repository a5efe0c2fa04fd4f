package relay

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"encoding/json"
	"log/slog"
)

// Broadcaster fans one event out to every open connection in a room.
// A failing peer is skipped and logged; it never blocks delivery to the
// others. The stale connection is reaped by the next liveness cycle.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

func (b *Broadcaster) Broadcast(room domain.RoomID, evt any) {
	data, err := json.Marshal(evt)
	if err != nil {
		b.log.Error("Failed to marshal outbound event", "room", room, "err", err)
		return
	}
	b.registry.ForEachOpenInRoom(room, func(c contract.Conn) {
		if err := c.Send(data); err != nil {
			b.log.Warn("Delivery failed, skipping peer", "conn", c.ID(), "room", room, "err", err)
		}
	})
}
