package usecase

import (
	"context"
	"testing"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientSelfProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerAlice(t, env)

	profile, err := env.patients.GetSelfProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", profile.FullName)

	unchanged, err := env.patients.UpdateSelfProfile(ctx, user.ID, &dto.PatientUpdateSelfRequest{})
	require.NoError(t, err)
	assert.Equal(t, profile.FullName, unchanged.FullName)
	assert.EqualValues(t, 0, env.countAudit(t, entity.AuditActionProfileUpdate))

	updated, err := env.patients.UpdateSelfProfile(ctx, user.ID, &dto.PatientUpdateSelfRequest{
		FullName:    "Alice Pleasance",
		PhoneNumber: "0812345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Pleasance", updated.FullName)
	assert.Equal(t, "0812345678", updated.PhoneNumber)
	assert.EqualValues(t, 1, env.countAudit(t, entity.AuditActionProfileUpdate))

	_, err = env.patients.UpdateSelfProfile(ctx, user.ID, &dto.PatientUpdateSelfRequest{OldPassword: "wrong", Password: "brand-new"})
	assert.ErrorIs(t, err, ErrInvalidOldPassword)

	_, err = env.patients.UpdateSelfProfile(ctx, user.ID, &dto.PatientUpdateSelfRequest{OldPassword: "secret123", Password: "brand-new"})
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "brand-new"})
	assert.NoError(t, err)

	_, err = env.patients.GetSelfProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, entity.ErrPatientNotFound)
}

func TestAuditLogQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAlice(t, env)

	list, err := env.auditLogs.GetAllAuditLogs(ctx, repository.AuditLogFilter{Action: entity.AuditActionUserRegister})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)

	one, err := env.auditLogs.GetAuditLog(ctx, list.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionUserRegister, one.Action)

	_, err = env.auditLogs.GetAuditLog(ctx, 999999)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
