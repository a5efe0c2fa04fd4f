package auth

import (
	"time"

	relayerrors "chat-relay/errors"

	"github.com/golang-jwt/jwt/v5"
)

// RoomClaims is the data carried by a room ticket: which profile was
// authorized and for which room. The relay core never verifies secrets
// itself; it trusts connections whose upgrade presented a valid ticket.
type RoomClaims struct {
	ProfileHash string `json:"profileHash"`
	Room        string `json:"room"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates room tickets (HMAC with SHA256).
type TokenManager struct {
	key []byte
	ttl time.Duration
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{key: key, ttl: ttl}
}

// Generate creates a signed ticket for a profile that passed the room
// secret check.
func (t *TokenManager) Generate(profileHash, room string) (string, error) {
	now := time.Now()
	claims := &RoomClaims{
		ProfileHash: profileHash,
		Room:        room,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-relay",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Validate parses and validates the signature and expiration of a ticket.
func (t *TokenManager) Validate(tokenString string) (*RoomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RoomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*RoomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, relayerrors.ErrInvalidToken
}
