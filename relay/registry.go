// Package relay is the connection/room multiplexer: the registry mapping
// live connections to rooms, the fan-out broadcaster, the liveness monitor
// and the frame router. It orchestrates delivery without containing any
// storage or transport logic.
package relay

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"log/slog"
	"sync"
)

type entry struct {
	conn        contract.Conn
	room        domain.RoomID
	profileHash string
	alive       bool
}

// Registry holds the non-owning association from connection identity to
// room and profile hash, plus the liveness flag swept by the monitor.
// Entries are removed exclusively through Remove, driven by the close path;
// iteration skips closed connections without touching their entries so a
// concurrent close callback never races the fan-out.
type Registry struct {
	mu      sync.RWMutex
	log     *slog.Logger
	entries map[string]*entry
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log, entries: make(map[string]*entry)}
}

// Register creates the entry for a freshly accepted connection. The room
// stays empty until the first join; the connection is alive by construction.
func (r *Registry) Register(conn contract.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[conn.ID()] = &entry{
		conn:        conn,
		profileHash: domain.ProfileHash(conn.Origin()),
		alive:       true,
	}
	r.log.Info("Connection registered", "conn", conn.ID(), "total", len(r.entries))
}

// SetRoom overwrites any prior room assignment for the connection. A
// connection has at most one room at any instant; once SetRoom returns, no
// broadcast observes the old assignment. Setting a room on an unregistered
// connection creates its entry.
func (r *Registry) SetRoom(conn contract.Conn, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[conn.ID()]
	if !ok {
		e = &entry{conn: conn, profileHash: domain.ProfileHash(conn.Origin()), alive: true}
		r.entries[conn.ID()] = e
	}
	e.room = room
}

func (r *Registry) RoomOf(connID string) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[connID]
	if !ok || e.room == "" {
		return "", false
	}
	return e.room, true
}

func (r *Registry) ProfileOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[connID]
	if !ok {
		return "", false
	}
	return e.profileHash, true
}

// Remove deletes the entry and returns its last known association. The
// second call for the same connection reports ok=false, which lets the
// close path stay idempotent.
func (r *Registry) Remove(connID string) (domain.RoomID, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[connID]
	if !ok {
		return "", "", false
	}
	delete(r.entries, connID)
	r.log.Info("Connection removed", "conn", connID, "total", len(r.entries))
	return e.room, e.profileHash, true
}

// ForEachOpenInRoom visits every open connection currently assigned to the
// room. Closed connections are skipped, not removed: removal belongs to the
// close handler. visit must not block; sends are buffered at the transport.
func (r *Registry) ForEachOpenInRoom(room domain.RoomID, visit func(contract.Conn)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.room != room || !e.conn.Open() {
			continue
		}
		visit(e.conn)
	}
}

// MarkAlive records a probe response.
func (r *Registry) MarkAlive(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[connID]; ok {
		e.alive = true
	}
}

// Sweep partitions the registered connections for one liveness cycle:
// connections whose flag is still down since the previous probe come back
// as stale, every other flag is lowered and the connection returned for a
// fresh probe. Entries are never removed here.
func (r *Registry) Sweep() (stale []contract.Conn, probe []contract.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if !e.alive {
			stale = append(stale, e.conn)
			continue
		}
		e.alive = false
		probe = append(probe, e.conn)
	}
	return stale, probe
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
