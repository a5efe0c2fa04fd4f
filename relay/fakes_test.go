package relay

import (
	"chat-relay/domain"
	relayerrors "chat-relay/errors"
	"encoding/json"
	"sync"
	"time"
)

// fakeConn substitutes a real transport endpoint so the core can be tested
// without a network.
type fakeConn struct {
	id     string
	origin string

	mu      sync.Mutex
	sent    [][]byte
	pings   int
	closed  bool
	sendErr error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, origin: id + ":40000"}
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) Origin() string { return c.origin }

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return relayerrors.ErrConnectionClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return relayerrors.ErrConnectionClosed
	}
	c.pings++
	return nil
}

func (c *fakeConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// received decodes every delivered frame into a generic map.
func (c *fakeConn) received() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var events []map[string]any
	for _, raw := range c.sent {
		var evt map[string]any
		if err := json.Unmarshal(raw, &evt); err == nil {
			events = append(events, evt)
		}
	}
	return events
}

func (c *fakeConn) pingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pings
}

type presenceRecord struct {
	hash     string
	online   bool
	lastSeen time.Time
}

// fakeGateway records persistence submissions without touching storage.
type fakeGateway struct {
	mu        sync.Mutex
	messages  []domain.Message
	presences []presenceRecord
}

func (g *fakeGateway) SubmitMessage(msg domain.Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, msg)
}

func (g *fakeGateway) SubmitPresence(profileHash string, online bool, lastSeen time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.presences = append(g.presences, presenceRecord{hash: profileHash, online: online, lastSeen: lastSeen})
}

func (g *fakeGateway) submittedMessages() []domain.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Message(nil), g.messages...)
}

func (g *fakeGateway) submittedPresences() []presenceRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]presenceRecord(nil), g.presences...)
}
