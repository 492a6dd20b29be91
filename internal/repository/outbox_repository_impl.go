package repository

import (
	"time"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type outboxRepository struct{}

func NewOutboxRepository() domainRepo.OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(db *gorm.DB, event *entity.OutboxEvent) error {
	return db.Create(event).Error
}

// FetchUnpublished locks the oldest pending events so that concurrent
// publishers pick disjoint batches.
func (r *outboxRepository) FetchUnpublished(db *gorm.DB, limit int) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(db *gorm.DB, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&entity.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error
}
