package service

import (
	"testing"
	"time"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "bazaarly-core")
	userID := uuid.New()

	token, expiresAt, err := svc.Generate(userID, domain.RoleMerchant)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleMerchant, claims.Role)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "bazaarly-core")
	other := NewJWTTokenService("secret-b", time.Hour, "bazaarly-core")

	token, _, err := svc.Generate(uuid.New(), domain.RoleCustomer)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "bazaarly-core")

	token, _, err := svc.Generate(uuid.New(), domain.RoleCustomer)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "bazaarly-core")

	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}
