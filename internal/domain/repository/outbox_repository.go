package repository

import (
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(db *gorm.DB, event *entity.OutboxEvent) error
	FetchUnpublished(db *gorm.DB, limit int) ([]entity.OutboxEvent, error)
	MarkPublished(db *gorm.DB, ids []uuid.UUID, at time.Time) error
}
