// Package testutil provides in-memory database and Redis fixtures for
// package tests.
package testutil

import (
	"fmt"
	"io"
	"testing"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema and
// the three seeded roles. It allows a single connection, so code under test
// must not touch the root handle while a transaction is open.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, db.Create([]entity.Role{
		{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin},
		{ID: entity.RoleIDDoctor, RoleName: entity.RoleDoctor},
		{ID: entity.RoleIDPatient, RoleName: entity.RolePatient},
	}).Error)

	return db
}

// NewRedis starts a miniredis server and returns a client bound to it.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// NewLogger returns a logger that discards output.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedUser(t testing.TB, db *gorm.DB, roleID int, name string) *entity.User {
	t.Helper()

	user := &entity.User{
		RoleID:   roleID,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: "$2a$10$hash",
		FullName: name,
	}
	require.NoError(t, db.Omit("Role", "DoctorProfile", "PatientProfile").Create(user).Error)
	return user
}

func SeedAdmin(t testing.TB, db *gorm.DB) *entity.User {
	return seedUser(t, db, entity.RoleIDAdmin, "admin")
}

func SeedPatient(t testing.TB, db *gorm.DB, name string) *entity.User {
	t.Helper()

	user := seedUser(t, db, entity.RoleIDPatient, name)
	require.NoError(t, db.Omit("User").Create(&entity.PatientProfile{UserID: user.ID}).Error)
	return user
}

// SeedDoctor creates an available doctor working 10:00 to 21:00 in 30 minute
// slots.
func SeedDoctor(t testing.TB, db *gorm.DB, name string, fees int64) *entity.DoctorProfile {
	t.Helper()

	user := seedUser(t, db, entity.RoleIDDoctor, name)
	available := true
	profile := &entity.DoctorProfile{
		UserID:            user.ID,
		LicenseNumber:     "LIC-" + uuid.NewString()[:8],
		Specialization:    "General physician",
		Fees:              decimal.NewFromInt(fees),
		WorkingHoursStart: entity.NewSlotTime(10, 0),
		WorkingHoursEnd:   entity.NewSlotTime(21, 0),
		SlotMinutes:       30,
		Available:         &available,
	}
	require.NoError(t, db.Omit("User").Create(profile).Error)
	profile.User = *user
	return profile
}

// Actor builds the caller identity for user.
func Actor(user *entity.User) entity.Actor {
	return entity.Actor{UserID: user.ID, RoleID: user.RoleID}
}
