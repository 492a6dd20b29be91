package repository

import (
	"errors"
	"fmt"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) FindByName(db *gorm.DB, name string) (*entity.Role, error) {
	var role entity.Role
	err := db.Where("role_name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByID(db *gorm.DB, id int) (*entity.Role, error) {
	var role entity.Role
	err := db.Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// VerifySeededRoles checks that every role the code refers to by ID exists
// under the expected name. A mismatch means migrations have not been applied.
func VerifySeededRoles(db *gorm.DB, roles domainRepo.RoleRepository) error {
	for _, id := range []int{entity.RoleIDAdmin, entity.RoleIDDoctor, entity.RoleIDPatient} {
		role, err := roles.FindByID(db, id)
		if err != nil {
			return fmt.Errorf("load role %d: %w", id, err)
		}
		want := entity.RoleName(id)
		if role == nil {
			return fmt.Errorf("role %q (id %d) is not seeded", want, id)
		}
		if role.RoleName != want {
			return fmt.Errorf("role id %d is %q, want %q", id, role.RoleName, want)
		}
	}
	return nil
}
