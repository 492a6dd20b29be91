package repository

import (
	"testing"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleLookups(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRoleRepository()

	role, err := repo.FindByName(db, entity.RoleDoctor)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, entity.RoleIDDoctor, role.ID)

	role, err = repo.FindByID(db, 99)
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestVerifySeededRoles(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRoleRepository()
	require.NoError(t, VerifySeededRoles(db, repo))

	require.NoError(t, db.Model(&entity.Role{}).Where("id = ?", entity.RoleIDPatient).Update("role_name", "member").Error)
	assert.ErrorContains(t, VerifySeededRoles(db, repo), `want "patient"`)

	require.NoError(t, db.Delete(&entity.Role{}, entity.RoleIDPatient).Error)
	assert.ErrorContains(t, VerifySeededRoles(db, repo), "is not seeded")
}
