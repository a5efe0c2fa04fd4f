package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/relay"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type nopGateway struct{}

func (nopGateway) SubmitMessage(domain.Message)           {}
func (nopGateway) SubmitPresence(string, bool, time.Time) {}

func newTestServer(t *testing.T) (*httptest.Server, *auth.TokenManager, *relay.Registry) {
	t.Helper()
	log := slog.Default()
	registry := relay.NewRegistry(log)
	broadcaster := relay.NewBroadcaster(log, registry)
	router := relay.NewRouter(log, registry, broadcaster, nopGateway{})
	tokens := auth.NewTokenManager([]byte("test-signing-key"), time.Hour)

	wsServer := NewServer(log, router, registry, tokens, 65536)
	server := httptest.NewServer(http.HandlerFunc(wsServer.HandleWS))
	t.Cleanup(server.Close)
	return server, tokens, registry
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func Test_Upgrade_Requires_A_Valid_Ticket(t *testing.T) {
	req := require.New(t)
	server, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=forged"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func Test_Message_Flows_Between_Two_Clients(t *testing.T) {
	req := require.New(t)
	server, tokens, _ := newTestServer(t)

	token, err := tokens.Generate("abcd1234", "lobby")
	req.NoError(err)

	alice := dial(t, server, token)
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","room":"lobby"}`)))
	// Alice hears her own presence once registered
	event := readEvent(t, alice)
	req.Equal("presence", event["type"])

	bob := dial(t, server, token)
	req.NoError(bob.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","room":"lobby"}`)))
	event = readEvent(t, bob)
	req.Equal("presence", event["type"])

	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","room":"lobby","payload":"hi bob"}`)))

	event = readEvent(t, bob)
	req.Equal("message", event["type"])
	req.Equal("hi bob", event["payload"])
	req.Equal("lobby", event["room"])
}

func Test_Malformed_Frame_Does_Not_Kill_The_Session(t *testing.T) {
	req := require.New(t)
	server, tokens, _ := newTestServer(t)

	token, err := tokens.Generate("abcd1234", "lobby")
	req.NoError(err)

	client := dial(t, server, token)
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","room":"lobby"}`)))
	event := readEvent(t, client)
	req.Equal("presence", event["type"])

	// Garbage first, a valid frame right after: only the latter is relayed
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`this is not json`)))
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","room":"lobby","payload":"still here"}`)))

	event = readEvent(t, client)
	req.Equal("message", event["type"])
	req.Equal("still here", event["payload"])
}

func Test_Session_Is_Pinned_To_The_Ticket_Room(t *testing.T) {
	req := require.New(t)
	server, tokens, registry := newTestServer(t)

	token, err := tokens.Generate("abcd1234", "lobby")
	req.NoError(err)

	client := dial(t, server, token)

	// A lobby ticket cannot reach another room: the join is discarded and
	// only the authorized join comes back as presence.
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","room":"vault"}`)))
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","room":"vault","payload":"break in"}`)))
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","room":"lobby"}`)))

	event := readEvent(t, client)
	req.Equal("presence", event["type"])
	req.Equal("lobby", event["room"])

	room, ok := registry.RoomOf(connIDOf(t, registry))
	req.True(ok)
	req.Equal(domain.RoomID("lobby"), room)
}

// connIDOf returns the single registered connection's ID.
func connIDOf(t *testing.T, registry *relay.Registry) string {
	t.Helper()
	var id string
	registry.ForEachOpenInRoom("lobby", func(c contract.Conn) { id = c.ID() })
	require.NotEmpty(t, id)
	return id
}

func Test_Closing_The_Socket_Removes_The_Registration(t *testing.T) {
	req := require.New(t)
	server, tokens, registry := newTestServer(t)

	token, err := tokens.Generate("abcd1234", "lobby")
	req.NoError(err)

	client := dial(t, server, token)
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","room":"lobby"}`)))
	readEvent(t, client)
	req.Equal(1, registry.Len())

	req.NoError(client.Close())

	req.Eventually(func() bool { return registry.Len() == 0 },
		2*time.Second, 10*time.Millisecond)
}
