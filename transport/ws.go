// Package transport adapts gorilla/websocket connections to the relay
// core's Conn contract: a buffered outbound channel keeps per-connection
// delivery in call order, the read loop feeds the router, and pong frames
// report liveness back to the registry.
package transport

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain/event"
	relayerrors "chat-relay/errors"
	"chat-relay/relay"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

// WsConn wraps one websocket session. The relay core holds it only through
// contract.Conn and never owns its lifetime. The room the ticket was issued
// for pins the session: frames naming any other room are discarded at read
// time.
type WsConn struct {
	id        string
	origin    string
	room      string
	conn      *websocket.Conn
	send      chan []byte
	pings     chan struct{}
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	log       *slog.Logger
}

func newWsConn(id, origin, room string, conn *websocket.Conn, log *slog.Logger) *WsConn {
	return &WsConn{
		id:     id,
		origin: origin,
		room:   room,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		pings:  make(chan struct{}, 1),
		done:   make(chan struct{}),
		log:    log,
	}
}

func (c *WsConn) ID() string     { return c.id }
func (c *WsConn) Origin() string { return c.origin }
func (c *WsConn) Open() bool     { return !c.closed.Load() }

// Send queues a frame on the outbound channel. The write pump drains the
// channel in order, so successive sends reach the peer in call order. A
// full buffer counts as a delivery failure: the peer is skipped and reaped
// by the liveness cycle.
func (c *WsConn) Send(data []byte) error {
	if c.closed.Load() {
		return relayerrors.ErrConnectionClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return relayerrors.ErrSendBufferFull
	}
}

// Ping requests a probe control frame. Probes coalesce: one pending ping
// is enough for a sweep interval.
func (c *WsConn) Ping() error {
	if c.closed.Load() {
		return relayerrors.ErrConnectionClosed
	}
	select {
	case c.pings <- struct{}{}:
	default:
	}
	return nil
}

// Close marks the connection closed and tears down the underlying
// transport. Safe to call from the router, the monitor and both pumps.
func (c *WsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		if err := c.conn.Close(); err != nil {
			c.log.Debug("Closing websocket failed", "conn", c.id, "err", err)
		}
	})
	return nil
}

// writePump is the single writer on the websocket. gorilla allows one
// concurrent writer, so every outbound frame and probe funnels through
// here.
func (c *WsConn) writePump() {
	defer c.Close()
	for {
		select {
		case <-c.done:
			deadline := time.Now().Add(writeWait)
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, deadline)
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("Write failed", "conn", c.id, "err", err)
				return
			}
		case <-c.pings:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Probe write failed", "conn", c.id, "err", err)
				return
			}
		}
	}
}

// Server upgrades HTTP requests into relay connections.
type Server struct {
	log          *slog.Logger
	upgrader     websocket.Upgrader
	router       *relay.Router
	registry     contract.IRegistry
	tokens       *auth.TokenManager
	maxFrameSize int64
}

func NewServer(log *slog.Logger, router *relay.Router, registry contract.IRegistry,
	tokens *auth.TokenManager, maxFrameSize int64) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Room access is gated by the ticket, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		router:       router,
		registry:     registry,
		tokens:       tokens,
		maxFrameSize: maxFrameSize,
	}
}

// HandleWS validates the room ticket, upgrades the connection and hands it
// to the relay core. The core trusts the connection from here on: the ticket
// authorized exactly one room, and the read loop holds the session to it.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid room token", http.StatusUnauthorized)
		return
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	conn := newWsConn(uuid.NewString(), r.RemoteAddr, claims.Room, wsConn, s.log)
	s.router.HandleOpen(conn)

	go conn.writePump()
	go s.readLoop(conn)
}

func (s *Server) readLoop(c *WsConn) {
	defer s.router.HandleClose(c)

	c.conn.SetReadLimit(s.maxFrameSize)
	c.conn.SetPongHandler(func(string) error {
		s.registry.MarkAlive(c.id)
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("Read failed", "conn", c.id, "err", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		// A frame naming a room other than the ticket's is dropped like any
		// malformed frame: silently, with no reply channel to distinguish
		// hostility from corruption.
		if frame, ok := event.Decode(raw); !ok || frame.Room != c.room {
			continue
		}
		s.router.HandleFrame(c, raw)
	}
}
