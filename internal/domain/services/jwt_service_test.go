package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(testConfig())
	account := &models.Account{BaseModel: models.BaseModel{ID: 42}, Role: models.RoleAdmin}

	token, expiresAt, err := svc.GenerateToken(account)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AccountID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "user-management", claims.Issuer)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	account := &models.Account{BaseModel: models.BaseModel{ID: 1}, Role: models.RoleUser}

	other := testConfig()
	other.JWTSecretKey = "another-secret"
	foreign, _, err := NewJWTService(other).GenerateToken(account)
	require.NoError(t, err)

	svc := NewJWTService(testConfig())
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	expired := svc.(*JWTService)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.GenerateToken(account)
	require.NoError(t, err)
	_, err = NewJWTService(testConfig()).ValidateToken(old)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
