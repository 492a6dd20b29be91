package entity

import (
	"errors"
	"testing"
	"time"

	"go-medical-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookedAppointment() *Appointment {
	return &Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		SlotDate:  SlotDate{2025, time.March, 5},
		SlotTime:  NewSlotTime(10, 30),
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	appt := newBookedAppointment()
	now := time.Now()

	changed, err := appt.Cancel(appt.PatientID, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, AppointmentStatusCancelled, appt.Status())
	assert.Equal(t, appt.PatientID, *appt.CancelledBy)

	changed, err = appt.Cancel(appt.DoctorID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, appt.PatientID, *appt.CancelledBy, "second cancel must not overwrite")
}

func TestCancelCompletedFails(t *testing.T) {
	appt := newBookedAppointment()
	_, err := appt.Complete(time.Now())
	require.NoError(t, err)

	changed, err := appt.Cancel(appt.PatientID, time.Now())
	assert.False(t, changed)
	assert.ErrorIs(t, err, ErrAppointmentCompleted)
	assert.True(t, errors.Is(err, apperror.ErrInvalidState))
	assert.False(t, appt.Cancelled)
}

func TestCompleteGuard(t *testing.T) {
	appt := newBookedAppointment()
	_, err := appt.Cancel(appt.PatientID, time.Now())
	require.NoError(t, err)

	changed, err := appt.Complete(time.Now())
	assert.False(t, changed)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
	assert.False(t, appt.Completed)

	fresh := newBookedAppointment()
	changed, err = fresh.Complete(time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = fresh.Complete(time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMarkPaidGuard(t *testing.T) {
	appt := newBookedAppointment()
	require.NoError(t, appt.MarkPaid("pi_123", time.Now()))
	assert.True(t, appt.Paid)
	assert.Equal(t, "pi_123", appt.PaymentOrderRef)
	assert.Equal(t, AppointmentStatusBooked, appt.Status(), "paid does not change the lifecycle state")

	assert.ErrorIs(t, appt.MarkPaid("pi_123", time.Now()), ErrAppointmentPaid)

	cancelled := newBookedAppointment()
	_, _ = cancelled.Cancel(cancelled.PatientID, time.Now())
	assert.ErrorIs(t, cancelled.MarkPaid("pi_456", time.Now()), ErrAppointmentCancelled)
	assert.False(t, cancelled.Paid)
}

func TestActorCanAccess(t *testing.T) {
	appt := newBookedAppointment()

	assert.True(t, Actor{UserID: appt.PatientID, RoleID: RoleIDPatient}.CanAccess(appt))
	assert.True(t, Actor{UserID: appt.DoctorID, RoleID: RoleIDDoctor}.CanAccess(appt))
	assert.True(t, Actor{UserID: uuid.New(), RoleID: RoleIDAdmin}.CanAccess(appt))
	assert.False(t, Actor{UserID: uuid.New(), RoleID: RoleIDPatient}.CanAccess(appt))
	assert.False(t, Actor{UserID: appt.PatientID, RoleID: RoleIDDoctor}.CanAccess(appt))
}
