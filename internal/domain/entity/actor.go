package entity

import "github.com/google/uuid"

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	RoleID int
}

func (a Actor) IsAdmin() bool   { return a.RoleID == RoleIDAdmin }
func (a Actor) IsDoctor() bool  { return a.RoleID == RoleIDDoctor }
func (a Actor) IsPatient() bool { return a.RoleID == RoleIDPatient }

// CanAccess reports whether the actor may act on appt: the booking patient,
// the treating doctor, or an admin.
func (a Actor) CanAccess(appt *Appointment) bool {
	switch a.RoleID {
	case RoleIDAdmin:
		return true
	case RoleIDDoctor:
		return appt.DoctorID == a.UserID
	case RoleIDPatient:
		return appt.PatientID == a.UserID
	default:
		return false
	}
}
