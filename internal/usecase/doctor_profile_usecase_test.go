package usecase

import (
	"context"
	"testing"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDoctorReq(email, license string) *dto.CreateDoctorRequest {
	return &dto.CreateDoctorRequest{
		Email:          email,
		Password:       "secret123",
		FullName:       "Gregory House",
		LicenseNumber:  license,
		Specialization: "Diagnostics",
		Fees:           decimal.NewFromInt(200),
	}
}

func TestCreateDoctor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.Actor(testutil.SeedAdmin(t, env.db))

	doctor, err := env.doctors.CreateDoctor(ctx, admin, createDoctorReq("house@example.com", "LIC-1"))
	require.NoError(t, err)
	assert.Equal(t, "10:00", doctor.WorkingHoursStart)
	assert.Equal(t, "21:00", doctor.WorkingHoursEnd)
	assert.Equal(t, 30, doctor.SlotMinutes)
	assert.True(t, doctor.Available)
	assert.EqualValues(t, 1, env.countAudit(t, entity.AuditActionDoctorCreate))

	_, err = env.doctors.CreateDoctor(ctx, admin, createDoctorReq("house@example.com", "LIC-2"))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = env.doctors.CreateDoctor(ctx, admin, createDoctorReq("wilson@example.com", "LIC-1"))
	assert.ErrorIs(t, err, ErrLicenseAlreadyExists)

	req := createDoctorReq("cuddy@example.com", "LIC-3")
	req.WorkingHoursStart = "18:00"
	req.WorkingHoursEnd = "09:00"
	_, err = env.doctors.CreateDoctor(ctx, admin, req)
	assert.ErrorIs(t, err, entity.ErrInvalidWorkingTime)

	req = createDoctorReq("foreman@example.com", "LIC-5")
	req.WorkingHoursStart = "10:15"
	_, err = env.doctors.CreateDoctor(ctx, admin, req)
	assert.ErrorIs(t, err, entity.ErrInvalidWorkingTime, "opening must sit on the slot grid")

	req = createDoctorReq("chase@example.com", "LIC-4")
	req.Fees = decimal.NewFromInt(-1)
	_, err = env.doctors.CreateDoctor(ctx, admin, req)
	assert.ErrorIs(t, err, entity.ErrInvalidFees)
}

func TestGetAllDoctorsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.Actor(testutil.SeedAdmin(t, env.db))
	house := testutil.SeedDoctor(t, env.db, "house", 150)
	testutil.SeedDoctor(t, env.db, "wilson", 100)

	_, err := env.doctors.SetAvailability(ctx, admin, house.UserID, false)
	require.NoError(t, err)

	all, err := env.doctors.GetAllDoctors(ctx, repository.DoctorFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	available, err := env.doctors.GetAllDoctors(ctx, repository.DoctorFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, available.Total)
	assert.Equal(t, "wilson", available.Doctors[0].FullName)

	named, err := env.doctors.GetAllDoctors(ctx, repository.DoctorFilter{Name: "hou"})
	require.NoError(t, err)
	assert.Equal(t, 1, named.Total)

	_, err = env.doctors.GetDoctor(ctx, uuid.New())
	assert.ErrorIs(t, err, entity.ErrDoctorNotFound)
	_, err = env.doctors.SetAvailability(ctx, admin, uuid.New(), true)
	assert.ErrorIs(t, err, entity.ErrDoctorNotFound)
}

func TestFeeChangeAppliesToNewBookingsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := testutil.SeedDoctor(t, env.db, "dr-house", 150)
	patient := testutil.SeedPatient(t, env.db, "alice")

	before, err := env.appointments.BookAppointment(ctx, testutil.Actor(patient), bookReq(doctor.UserID, "2025-03-05", "10:00"))
	require.NoError(t, err)

	fees := decimal.NewFromInt(175)
	updated, err := env.doctors.UpdateSelfProfile(ctx, doctor.UserID, &dto.DoctorUpdateSelfRequest{Fees: &fees, Biography: "Nephrology"})
	require.NoError(t, err)
	assert.True(t, fees.Equal(updated.Fees))
	assert.Equal(t, "Nephrology", updated.Biography)

	after, err := env.appointments.BookAppointment(ctx, testutil.Actor(patient), bookReq(doctor.UserID, "2025-03-05", "10:30"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(175).Equal(after.Amount))

	stored, err := env.appointmentRepo.FindByID(env.db, before.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(stored.Amount))
}

func TestDoctorSelfUpdateRequiresOldPassword(t *testing.T) {
	env := newTestEnv(t)
	doctor := testutil.SeedDoctor(t, env.db, "dr-house", 150)

	_, err := env.doctors.UpdateSelfProfile(context.Background(), doctor.UserID, &dto.DoctorUpdateSelfRequest{
		OldPassword: "not-it",
		Password:    "new-secret",
	})
	assert.ErrorIs(t, err, ErrInvalidOldPassword)
}

func TestUpdateDoctor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.Actor(testutil.SeedAdmin(t, env.db))
	doctor := testutil.SeedDoctor(t, env.db, "dr-house", 150)
	other := testutil.SeedDoctor(t, env.db, "dr-wilson", 150)

	resp, err := env.doctors.UpdateDoctor(ctx, admin, doctor.UserID, &dto.UpdateDoctorRequest{
		Specialization:    "Nephrology",
		WorkingHoursStart: "08:00",
		WorkingHoursEnd:   "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nephrology", resp.Specialization)
	assert.Equal(t, "08:00", resp.WorkingHoursStart)
	assert.Equal(t, "12:00", resp.WorkingHoursEnd)

	_, err = env.doctors.UpdateDoctor(ctx, admin, doctor.UserID, &dto.UpdateDoctorRequest{Email: other.User.Email})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = env.doctors.UpdateDoctor(ctx, admin, uuid.New(), &dto.UpdateDoctorRequest{FullName: "Nobody"})
	assert.ErrorIs(t, err, entity.ErrDoctorNotFound)
}
