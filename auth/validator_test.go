package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ValidateCreateRoom(t *testing.T) {
	tests := []struct {
		name    string
		request CreateRoomRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: CreateRoomRequest{Name: "lobby", DisplayName: "The Lobby", Secret: "hunter2"},
		},
		{
			name:    "name is mandatory",
			request: CreateRoomRequest{Secret: "hunter2"},
			wantErr: true,
		},
		{
			name:    "name with slash is rejected",
			request: CreateRoomRequest{Name: "a/b", Secret: "hunter2"},
			wantErr: true,
		},
		{
			name:    "name with space is rejected",
			request: CreateRoomRequest{Name: "two words", Secret: "hunter2"},
			wantErr: true,
		},
		{
			name:    "secret too short",
			request: CreateRoomRequest{Name: "lobby", Secret: "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateRoom(tt.request)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_ValidateJoinRoom(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateJoinRoom(JoinRoomRequest{Secret: "hunter2", DisplayName: "Alice"}))
	req.Error(ValidateJoinRoom(JoinRoomRequest{DisplayName: "Alice"}))
}
