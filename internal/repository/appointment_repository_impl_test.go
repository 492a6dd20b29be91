package repository

import (
	"testing"
	"time"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createAppointment(t *testing.T, db *gorm.DB, patient *entity.User, doctor *entity.DoctorProfile, at entity.SlotTime) *entity.Appointment {
	t.Helper()
	appt := &entity.Appointment{
		BookingCode: "BK-" + uuid.NewString()[:8],
		PatientID:   patient.ID,
		DoctorID:    doctor.UserID,
		SlotDate:    entity.SlotDate{Year: 2025, Month: time.March, Day: 5},
		SlotTime:    at,
		Amount:      doctor.Fees,
		Currency:    "usd",
	}
	require.NoError(t, NewAppointmentRepository().Create(db, appt))
	return appt
}

func TestAppointmentRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAppointmentRepository()
	patient := testutil.SeedPatient(t, db, "alice")
	doctor := testutil.SeedDoctor(t, db, "dr-house", 150)

	appt := createAppointment(t, db, patient, doctor, entity.NewSlotTime(10, 30))

	found, err := repo.FindByID(db, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "5_3_2025", found.SlotDate.Key())
	assert.Equal(t, "10:30", found.SlotTime.String())
	assert.True(t, decimal.NewFromInt(150).Equal(found.Amount))
	assert.Equal(t, entity.AppointmentStatusBooked, found.Status())
	require.NotNil(t, found.Doctor)
	assert.Equal(t, "dr-house", found.Doctor.User.FullName)

	missing, err := repo.FindByID(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestConditionalTransitions(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAppointmentRepository()
	patient := testutil.SeedPatient(t, db, "alice")
	doctor := testutil.SeedDoctor(t, db, "dr-house", 150)
	now := time.Now()

	appt := createAppointment(t, db, patient, doctor, entity.NewSlotTime(10, 30))
	_, err := appt.Complete(now)
	require.NoError(t, err)
	n, err := repo.MarkCompleted(db, appt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stale := *appt
	stale.Completed = false
	_, err = stale.Cancel(patient.ID, now)
	require.NoError(t, err)
	n, err = repo.MarkCancelled(db, &stale)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "a completed row cannot be cancelled")

	n, err = repo.MarkPaid(db, appt)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "a completed row cannot be paid")

	found, err := repo.FindByID(db, appt.ID)
	require.NoError(t, err)
	assert.True(t, found.Completed)
	assert.False(t, found.Cancelled)
	assert.False(t, found.Paid)
}

func TestMarkPaidOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAppointmentRepository()
	patient := testutil.SeedPatient(t, db, "alice")
	doctor := testutil.SeedDoctor(t, db, "dr-house", 150)

	appt := createAppointment(t, db, patient, doctor, entity.NewSlotTime(10, 30))
	n, err := repo.SetPaymentOrderRef(db, appt.ID, "pi_123")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, appt.MarkPaid("pi_123", time.Now()))
	n, err = repo.MarkPaid(db, appt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.MarkPaid(db, appt)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	found, err := repo.FindByPaymentOrderRef(db, "pi_123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Paid)
}

func TestDoctorAggregates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAppointmentRepository()
	alice := testutil.SeedPatient(t, db, "alice")
	bob := testutil.SeedPatient(t, db, "bob")
	doctor := testutil.SeedDoctor(t, db, "dr-house", 150)
	now := time.Now()

	completed := createAppointment(t, db, alice, doctor, entity.NewSlotTime(10, 0))
	_, _ = completed.Complete(now)
	_, err := repo.MarkCompleted(db, completed)
	require.NoError(t, err)

	paid := createAppointment(t, db, bob, doctor, entity.NewSlotTime(10, 30))
	require.NoError(t, paid.MarkPaid("pi_1", now))
	_, err = repo.MarkPaid(db, paid)
	require.NoError(t, err)

	createAppointment(t, db, alice, doctor, entity.NewSlotTime(11, 0))

	earnings, err := repo.SumEarnings(db, doctor.UserID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(earnings), earnings.String())

	patients, err := repo.CountDistinctPatients(db, doctor.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, patients)

	latest, err := repo.FindLatest(db, &doctor.UserID, 2)
	require.NoError(t, err)
	assert.Len(t, latest, 2)

	idle := testutil.SeedDoctor(t, db, "dr-idle", 90)
	zero, err := repo.SumEarnings(db, idle.UserID)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}
