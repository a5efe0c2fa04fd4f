// Package event defines the JSON text frames exchanged with peers.
// Inbound frames are classified by their type discriminator; outbound
// events carry one fixed shape per kind. Fields outside these shapes
// are ignored.
package event

import (
	"encoding/json"
	"time"
)

// Frame kinds after classification.
const (
	KindJoin    = "join"
	KindTyping  = "typing"
	KindMessage = "message"
)

// Frame is the inbound client event. Payload and Typing are pointers so a
// missing field can be told apart from a zero value.
type Frame struct {
	Type    string  `json:"type"`
	Room    string  `json:"room"`
	Payload *string `json:"payload"`
	Typing  *bool   `json:"typing"`
}

// Decode parses a raw text frame. It returns ok=false for anything outside
// the wire shape: non-JSON input, a missing or empty room, a wrong-typed
// field, or an unknown type value. A frame without a type discriminator
// defaults to a message frame.
func Decode(raw []byte) (Frame, bool) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, false
	}
	if f.Room == "" {
		return Frame{}, false
	}
	switch f.Type {
	case "":
		f.Type = KindMessage
	case KindJoin, KindTyping, KindMessage:
	default:
		return Frame{}, false
	}
	return f, true
}

// Kind returns the classified frame kind.
func (f Frame) Kind() string { return f.Type }

// Presence notifies room members that a profile joined or left. The same
// shape is used for both directions: peers treat presence events as
// idempotent room-membership pings, not join/leave deltas.
type Presence struct {
	Type        string `json:"type"`
	Room        string `json:"room"`
	ProfileHash string `json:"profileHash"`
}

func NewPresence(room, profileHash string) Presence {
	return Presence{Type: "presence", Room: room, ProfileHash: profileHash}
}

// Typing is the ephemeral typing indicator. Never persisted.
type Typing struct {
	Type        string `json:"type"`
	Room        string `json:"room"`
	ProfileHash string `json:"profileHash"`
	Typing      bool   `json:"typing"`
}

func NewTyping(room, profileHash string, typing bool) Typing {
	return Typing{Type: "typing", Room: room, ProfileHash: profileHash, Typing: typing}
}

// Message is the relayed chat payload with the timestamp the router
// assigned at receipt.
type Message struct {
	Type      string `json:"type"`
	Room      string `json:"room"`
	Payload   string `json:"payload"`
	Timestamp string `json:"timestamp"`
}

func NewMessage(room, payload string, at time.Time) Message {
	return Message{Type: "message", Room: room, Payload: payload, Timestamp: at.UTC().Format(time.RFC3339Nano)}
}
