package usecase

import (
	"context"
	"testing"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAlice(t *testing.T, env *testEnv) *dto.UserResponse {
	t.Helper()

	user, err := env.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Email:       "alice@example.com",
		Password:    "secret123",
		FullName:    "Alice Liddell",
		DateOfBirth: "1990-04-01",
		Gender:      "female",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterPatient(t *testing.T) {
	env := newTestEnv(t)

	user := registerAlice(t, env)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, entity.RolePatient, user.Role)
	require.NotNil(t, user.PatientProfile)
	assert.Equal(t, "1990-04-01", user.PatientProfile.DateOfBirth)
	assert.EqualValues(t, 1, env.countAudit(t, entity.AuditActionUserRegister))

	_, err := env.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Email:    "alice@example.com",
		Password: "other123",
		FullName: "Another Alice",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = env.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Email:       "bob@example.com",
		Password:    "secret123",
		FullName:    "Bob",
		DateOfBirth: "01/04/1990",
	})
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestLoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerAlice(t, env)

	_, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.EqualValues(t, 15*60, tokens.ExpiresIn)

	access, err := env.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, access.UserID)
	assert.True(t, env.mr.Exists(AccessTokenKey(user.ID, access.TokenID)))

	rotated, err := env.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// A refresh token is single use.
	_, err = env.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// An access token is not a refresh token.
	_, err = env.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := env.jwtService.ValidateToken(rotated.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, env.auth.Logout(ctx, user.ID, access.TokenID, refresh.TokenID))
	assert.False(t, env.mr.Exists(AccessTokenKey(user.ID, access.TokenID)))

	_, err = env.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLoginInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	user := registerAlice(t, env)

	require.NoError(t, env.db.Model(&entity.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err := env.auth.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestGetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	user := registerAlice(t, env)

	me, err := env.auth.GetCurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", me.FullName)
	require.NotNil(t, me.PatientProfile)
	assert.Equal(t, "female", me.PatientProfile.Gender)
}
