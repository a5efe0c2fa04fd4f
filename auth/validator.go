package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateRoomRequest is the payload for room creation. The name doubles as
// the broadcast label, so it is kept URL- and key-safe.
type CreateRoomRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64,printascii,excludesall=/ "`
	DisplayName string `json:"displayName" validate:"max=128"`
	Secret      string `json:"secret" validate:"required,min=4,max=72"`
}

// JoinRoomRequest is the payload for the secret check that issues a room
// ticket.
type JoinRoomRequest struct {
	Secret      string `json:"secret" validate:"required"`
	DisplayName string `json:"displayName" validate:"max=128"`
}

func ValidateCreateRoom(req CreateRoomRequest) error {
	return validate.Struct(req)
}

func ValidateJoinRoom(req JoinRoomRequest) error {
	return validate.Struct(req)
}
