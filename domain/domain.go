// Package domain contains core concepts of the relay.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"time"

	"github.com/google/uuid"
)

// RoomID is a string label partitioning connections into independent
// broadcast groups. Rooms are not entities in the relay core; the only
// durable materialization lives in the room repository.
type RoomID string

// Message represents an immutable chat event as the relay sees it.
// The payload is opaque: never inspected, never transformed.
type Message struct {
	ID      uuid.UUID
	Room    RoomID
	Author  string // profile hash of the sender
	Payload string
	At      time.Time
}

// Profile is the durable per-origin identity, keyed by ProfileHash.
type Profile struct {
	Hash        string
	DisplayName string
	Online      bool
	LastSeen    time.Time
}

// ProfileHash derives the stable profile key from a connection's network
// origin. The port is stripped so reconnects from the same host map to the
// same profile.
func ProfileHash(origin string) string {
	host, _, err := net.SplitHostPort(origin)
	if err != nil {
		host = origin
	}
	sum := sha256.Sum256([]byte(host))
	return hex.EncodeToString(sum[:])[:16]
}
