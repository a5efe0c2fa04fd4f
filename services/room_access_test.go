package services

import (
	relayerrors "chat-relay/errors"
	"chat-relay/repositories"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRoomRepo struct {
	rooms map[string]repositories.RoomRecord
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: make(map[string]repositories.RoomRecord)}
}

func (r *memoryRoomRepo) Create(room repositories.RoomRecord) error {
	if _, ok := r.rooms[room.Name]; ok {
		return relayerrors.ErrRoomAlreadyExists
	}
	r.rooms[room.Name] = room
	return nil
}

func (r *memoryRoomRepo) Get(name string) (repositories.RoomRecord, error) {
	room, ok := r.rooms[name]
	if !ok {
		return repositories.RoomRecord{}, relayerrors.ErrRoomNotFound
	}
	return room, nil
}

func Test_CreateRoom_Hashes_The_Secret(t *testing.T) {
	req := require.New(t)
	repo := newMemoryRoomRepo()
	service := NewRoomAccessService(repo, slog.Default())

	req.NoError(service.CreateRoom("lobby", "The Lobby", "hunter2"))

	stored := repo.rooms["lobby"]
	req.Equal("lobby", stored.Name)
	req.Equal("The Lobby", stored.DisplayName)
	req.NotEqual("hunter2", stored.SecretHash)
	req.NotEmpty(stored.SecretHash)
	req.False(stored.CreatedAt.IsZero())
}

func Test_CreateRoom_Duplicate(t *testing.T) {
	req := require.New(t)
	service := NewRoomAccessService(newMemoryRoomRepo(), slog.Default())

	req.NoError(service.CreateRoom("lobby", "", "hunter2"))
	req.ErrorIs(service.CreateRoom("lobby", "", "other"), relayerrors.ErrRoomAlreadyExists)
}

func Test_Authorize(t *testing.T) {
	req := require.New(t)
	service := NewRoomAccessService(newMemoryRoomRepo(), slog.Default())
	req.NoError(service.CreateRoom("lobby", "", "hunter2"))

	// Right secret
	req.NoError(service.Authorize("lobby", "hunter2"))

	// Wrong secret
	req.ErrorIs(service.Authorize("lobby", "letmein"), relayerrors.ErrWrongSecret)

	// Unknown room
	req.ErrorIs(service.Authorize("nowhere", "hunter2"), relayerrors.ErrRoomNotFound)
}
