package service

import (
	"testing"
	"time"

	"cambiototal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "cambiototal")

	token, expiry, err := svc.Generate("juan_operador", "Juan (Operador)", domain.RoleOperator)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "juan_operador", claims.Username)
	assert.Equal(t, "Juan (Operador)", claims.Name)
	assert.Equal(t, domain.RoleOperator, claims.Role)
}

func TestJWTTokenService_AdminRole(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "cambiototal")

	token, _, err := svc.Generate("agustin_admin", "Agustín", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestJWTTokenService_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "cambiototal")
	other := NewJWTTokenService("secret-b", time.Hour, "cambiototal")

	token, _, err := svc.Generate("juan_operador", "Juan", domain.RoleOperator)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret", -time.Minute, "cambiototal")

	token, _, err := svc.Generate("juan_operador", "Juan", domain.RoleOperator)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "cambiototal")

	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}
