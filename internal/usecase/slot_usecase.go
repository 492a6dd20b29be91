package usecase

import (
	"context"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/calendar"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SlotUsecase interface {
	GetDoctorSlots(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorSlotsResponse, error)
}

type slotUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	policy            BookingPolicy
	doctorProfileRepo repository.DoctorProfileRepository
	slotCache         *service.SlotCacheService
}

func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	policy BookingPolicy,
	doctorProfileRepo repository.DoctorProfileRepository,
	slotCache *service.SlotCacheService,
) SlotUsecase {
	return &slotUsecase{
		db:                db,
		log:               log,
		policy:            policy,
		doctorProfileRepo: doctorProfileRepo,
		slotCache:         slotCache,
	}
}

// GetDoctorSlots returns the free slots for the next calendar.WindowDays
// days. An unavailable doctor gets every day with no slots.
func (u *slotUsecase) GetDoctorSlots(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorSlotsResponse, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, entity.ErrDoctorNotFound
	}

	now := u.policy.now()
	booked, err := u.slotCache.BookedSlots(ctx, doctorID, entity.NewSlotDate(now), calendar.WindowDays)
	if err != nil {
		u.log.Warnf("Failed to load booked slots for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	days := calendar.Generate(doctor.WorkingHours(), now, booked)
	if !doctor.IsAvailable() {
		for i := range days {
			days[i].Slots = []calendar.Slot{}
		}
	}

	return &dto.DoctorSlotsResponse{
		DoctorID:    doctorID,
		Fees:        doctor.Fees,
		Days:        converter.SlotDaysToResponses(days),
		SlotsBooked: booked.SlotsBooked(),
	}, nil
}
