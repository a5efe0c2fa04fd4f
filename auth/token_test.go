package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Generate_And_Validate_Ticket(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager([]byte("test-signing-key"), time.Hour)

	token, err := manager.Generate("abcd1234", "lobby")
	req.NoError(err)

	claims, err := manager.Validate(token)
	req.NoError(err)
	req.Equal("abcd1234", claims.ProfileHash)
	req.Equal("lobby", claims.Room)
	req.Equal("chat-relay", claims.Issuer)
}

func Test_Validate_Rejects_Expired_Ticket(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager([]byte("test-signing-key"), -time.Minute)

	token, err := manager.Generate("abcd1234", "lobby")
	req.NoError(err)

	_, err = manager.Validate(token)
	req.Error(err)
}

func Test_Validate_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	signer := NewTokenManager([]byte("key-one"), time.Hour)
	verifier := NewTokenManager([]byte("key-two"), time.Hour)

	token, err := signer.Generate("abcd1234", "lobby")
	req.NoError(err)

	_, err = verifier.Validate(token)
	req.Error(err)
}

func Test_Validate_Rejects_Garbage(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager([]byte("test-signing-key"), time.Hour)

	_, err := manager.Validate("definitely.not.a-jwt")
	req.Error(err)
}
