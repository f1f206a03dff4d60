package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("secret", time.Minute)
	userID, familyID := uuid.New(), uuid.New()

	token, err := svc.GenerateAccessToken(userID, familyID, "child")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, familyID, claims.FamilyID)
	assert.Equal(t, "child", claims.Role)
}

func TestExpiredToken(t *testing.T) {
	svc := NewService("secret", -time.Minute)
	token, err := svc.GenerateAccessToken(uuid.New(), uuid.New(), "parent")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewService("a", time.Minute).GenerateAccessToken(uuid.New(), uuid.New(), "parent")
	require.NoError(t, err)

	_, err = NewService("b", time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
