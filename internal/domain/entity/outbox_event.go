package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment event types. The publisher uses the type as the Kafka topic.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentPaid      = "appointment.paid"
)

// OutboxEvent is a domain event written in the same transaction as the
// state change it describes and published asynchronously.
type OutboxEvent struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AggregateType string     `gorm:"type:varchar(50);not null" json:"aggregate_type"`
	AggregateID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	EventType     string     `gorm:"type:varchar(100);not null" json:"event_type"`
	Payload       JSON       `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewAppointmentEvent builds the outbox row for an appointment transition.
func NewAppointmentEvent(eventType string, appt *Appointment) *OutboxEvent {
	return &OutboxEvent{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload: JSON{
			"appointment_id": appt.ID.String(),
			"booking_code":   appt.BookingCode,
			"patient_id":     appt.PatientID.String(),
			"doctor_id":      appt.DoctorID.String(),
			"slot_date":      appt.SlotDate.Key(),
			"slot_time":      appt.SlotTime.String(),
			"status":         string(appt.Status()),
			"paid":           appt.Paid,
		},
	}
}
