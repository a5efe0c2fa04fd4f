// Package httpapi is the thin stateless HTTP layer around the relay core:
// room creation and authorization, history retrieval, search, stats, and
// the websocket entry point. It holds no relay state of its own.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	relayerrors "chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/services"

	"github.com/samber/lo"
)

type Handler struct {
	log         *slog.Logger
	roomAccess  *services.RoomAccessService
	messages    repositories.IMessageRepository
	profiles    repositories.IProfileRepository
	search      repositories.ISearchIndex
	tokens      *auth.TokenManager
	registry    contract.IRegistry
	stats       *observability.Collector
	ws          http.HandlerFunc
	searchLimit int
}

func NewHandler(log *slog.Logger, roomAccess *services.RoomAccessService,
	messages repositories.IMessageRepository, profiles repositories.IProfileRepository,
	search repositories.ISearchIndex, tokens *auth.TokenManager,
	registry contract.IRegistry, stats *observability.Collector,
	ws http.HandlerFunc, searchLimit int) *Handler {
	return &Handler{
		log:         log,
		roomAccess:  roomAccess,
		messages:    messages,
		profiles:    profiles,
		search:      search,
		tokens:      tokens,
		registry:    registry,
		stats:       stats,
		ws:          ws,
		searchLimit: searchLimit,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms", h.handleCreateRoom)
	mux.HandleFunc("POST /rooms/{name}/join", h.handleJoinRoom)
	mux.HandleFunc("GET /rooms/{name}/history", h.handleHistory)
	mux.HandleFunc("GET /rooms/{name}/search", h.handleSearch)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /ws", h.ws)
	return mux
}

// messageResponse is the JSON shape of one persisted message.
type messageResponse struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Author    string `json:"author"`
	Payload   string `json:"payload"`
	Timestamp string `json:"timestamp"`
}

func toMessageResponse(msg domain.Message, _ int) messageResponse {
	return messageResponse{
		ID:        msg.ID.String(),
		Room:      string(msg.Room),
		Author:    msg.Author,
		Payload:   msg.Payload,
		Timestamp: msg.At.UTC().Format(time.RFC3339Nano),
	}
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := auth.ValidateCreateRoom(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.roomAccess.CreateRoom(req.Name, req.DisplayName, req.Secret)
	switch {
	case errors.Is(err, relayerrors.ErrRoomAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.log.Error("Room creation failed", "room", req.Name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusCreated)
	}
}

func (h *Handler) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req auth.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := auth.ValidateJoinRoom(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.roomAccess.Authorize(name, req.Secret)
	switch {
	case errors.Is(err, relayerrors.ErrRoomNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, relayerrors.ErrWrongSecret):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case err != nil:
		h.log.Error("Room authorization failed", "room", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	profileHash := domain.ProfileHash(r.RemoteAddr)
	if req.DisplayName != "" {
		// Best effort: a profile without a display name is still usable.
		if err := h.profiles.SetDisplayName(profileHash, req.DisplayName); err != nil {
			h.log.Error("Display name update failed", "profile", profileHash, "err", err)
		}
	}

	token, err := h.tokens.Generate(profileHash, name)
	if err != nil {
		h.log.Error("Token generation failed", "room", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"token":       token,
		"profileHash": profileHash,
	})
}

// checkTicket validates the room ticket on the request and checks it was
// issued for the requested room. Room content is secret-gated; reading it
// back requires the same ticket as the live connection.
func (h *Handler) checkTicket(r *http.Request, room string) error {
	claims, err := h.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		return err
	}
	if claims.Room != room {
		return relayerrors.ErrInvalidToken
	}
	return nil
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomID(r.PathValue("name"))
	if err := h.checkTicket(r, string(room)); err != nil {
		http.Error(w, "invalid room token", http.StatusUnauthorized)
		return
	}
	messages, err := h.messages.History(room)
	if err != nil {
		h.log.Error("History retrieval failed", "room", room, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, lo.Map(messages, toMessageResponse))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomID(r.PathValue("name"))
	if err := h.checkTicket(r, string(room)); err != nil {
		http.Error(w, "invalid room token", http.StatusUnauthorized)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	hits, err := h.search.Search(r.Context(), room, query, h.searchLimit)
	if err != nil {
		h.log.Error("Search failed", "room", room, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, lo.Map(hits, toMessageResponse))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	processStats, err := h.stats.Collect()
	if err != nil {
		h.log.Error("Stats collection failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"connections": h.registry.Len(),
		"process":     processStats,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Response encoding failed", "err", err)
	}
}
