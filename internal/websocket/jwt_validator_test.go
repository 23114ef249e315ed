package websocket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	assert.NoError(t, claims.Validate(context.Background()))
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.royalty-ledger.app")
	assert.NoError(t, err)
	assert.NotNil(t, v)
}

func TestAuth0JWTValidator_ValidateToken_Malformed(t *testing.T) {
	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.royalty-ledger.app")
	assert.NoError(t, err)

	session, err := v.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, session.Subject)
	assert.True(t, session.ExpiresAt.IsZero())
}
