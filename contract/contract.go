package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
	"time"
)

// Conn is one live bidirectional transport session with a peer. The relay
// core never owns connection lifetime: it only associates a Conn with a room
// and drops the association when the transport closes.
type Conn interface {
	ID() string
	// Origin is the network origin the profile hash is derived from.
	Origin() string
	// Send queues data on the connection's outbound path. Successive sends
	// are delivered in call order. Returns an error when the connection is
	// closed or its buffer is full.
	Send(data []byte) error
	// Ping sends a liveness probe. The probe response is observed
	// asynchronously by the transport and reported to the registry.
	Ping() error
	Open() bool
	Close() error
}

// IRegistry maps live connections to their current room and profile
// identity. It also carries the liveness flag the monitor sweeps.
type IRegistry interface {
	Register(conn Conn)
	SetRoom(conn Conn, room domain.RoomID)
	RoomOf(connID string) (domain.RoomID, bool)
	ProfileOf(connID string) (string, bool)
	Remove(connID string) (domain.RoomID, string, bool)
	ForEachOpenInRoom(room domain.RoomID, visit func(Conn))
	MarkAlive(connID string)
	Sweep() (stale []Conn, probe []Conn)
	Len() int
}

// IBroadcaster fans an event out to every open connection in a room.
type IBroadcaster interface {
	Broadcast(room domain.RoomID, evt any)
}

// IPersistenceGateway is the fire-and-forget boundary to durable storage.
// Submissions never block the caller and their outcome is never surfaced:
// failures are logged by the gateway worker, not retried.
type IPersistenceGateway interface {
	SubmitMessage(msg domain.Message)
	SubmitPresence(profileHash string, online bool, lastSeen time.Time)
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
