// Package services holds the thin application layer between the HTTP
// handlers and the repositories.
package services

import (
	"chat-relay/auth"
	relayerrors "chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"log/slog"
	"time"
)

// RoomAccessService implements room creation and authorization by shared
// secret. It sits entirely upstream of the relay core: a connection that
// reaches a join frame has already been authorized here.
type RoomAccessService struct {
	rooms repositories.IRoomRepository
	log   *slog.Logger
}

func NewRoomAccessService(rooms repositories.IRoomRepository, log *slog.Logger) *RoomAccessService {
	return &RoomAccessService{rooms: rooms, log: log}
}

// CreateRoom stores a new room with its secret hashed. Returns
// ErrRoomAlreadyExists on duplicate names.
func (s *RoomAccessService) CreateRoom(name, displayName, secret string) error {
	secretHash, err := auth.HashSecret(secret)
	if err != nil {
		return fmt.Errorf("hashing room secret: %w", err)
	}
	return s.rooms.Create(repositories.RoomRecord{
		Name:        name,
		DisplayName: displayName,
		SecretHash:  secretHash,
		CreatedAt:   time.Now().UTC(),
	})
}

// Authorize checks a shared secret against the stored hash. Returns
// ErrRoomNotFound or ErrWrongSecret on failure.
func (s *RoomAccessService) Authorize(name, secret string) error {
	room, err := s.rooms.Get(name)
	if err != nil {
		return err
	}
	ok, err := auth.CompareSecret(secret, room.SecretHash)
	if err != nil {
		return err
	}
	if !ok {
		return relayerrors.ErrWrongSecret
	}
	return nil
}
