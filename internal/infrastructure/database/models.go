package database

import "go-medical-booking/internal/domain/entity"

// Models lists every persisted entity in dependency order. Production
// schemas come from migrations; this list backs AutoMigrate in tests.
func Models() []interface{} {
	return []interface{}{
		&entity.Role{},
		&entity.User{},
		&entity.DoctorProfile{},
		&entity.PatientProfile{},
		&entity.Appointment{},
		&entity.SlotReservation{},
		&entity.AuditLog{},
		&entity.OutboxEvent{},
	}
}
