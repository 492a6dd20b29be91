package usecase

import (
	"context"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DoctorProfileUsecase interface {
	CreateDoctor(ctx context.Context, actor entity.Actor, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, filter repository.DoctorFilter) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateSelfProfile(ctx context.Context, doctorID uuid.UUID, req *dto.DoctorUpdateSelfRequest) (*dto.DoctorResponse, error)
	SetAvailability(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, available bool) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	policy            BookingPolicy
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	policy BookingPolicy,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		policy:            policy,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) CreateDoctor(ctx context.Context, actor entity.Actor, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	hours, err := u.workingHours(u.policy.DefaultHours, req.WorkingHoursStart, req.WorkingHoursEnd)
	if err != nil {
		return nil, err
	}
	if req.Fees.IsNegative() {
		return nil, entity.ErrInvalidFees
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByEmail(tx, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		RoleID:   entity.RoleIDDoctor,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create doctor user: %+v", err)
		return nil, err
	}

	available := true
	doctorProfile := &entity.DoctorProfile{
		UserID:            user.ID,
		LicenseNumber:     req.LicenseNumber,
		Specialization:    req.Specialization,
		Degree:            req.Degree,
		Experience:        req.Experience,
		Biography:         req.Biography,
		Address:           req.Address,
		Fees:              req.Fees,
		WorkingHoursStart: hours.Start,
		WorkingHoursEnd:   hours.End,
		SlotMinutes:       hours.SlotMinutes,
		Available:         &available,
	}
	if err := u.doctorProfileRepo.Create(tx, doctorProfile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrLicenseAlreadyExists
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}
	doctorProfile.User = *user

	if err := u.auditService.LogCreate(tx, &actor.UserID, entity.AuditActionDoctorCreate, "doctor_profile", doctorProfile.UserID.String(), converter.DoctorProfileToResponse(doctorProfile)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(doctorProfile), nil
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, entity.ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context, filter repository.DoctorFilter) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find all doctor profiles: %+v", err)
		return nil, err
	}

	doctors := converter.DoctorProfilesToResponses(profiles)

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) UpdateDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, entity.ErrDoctorNotFound
	}

	oldValue := converter.DoctorProfileToResponse(profile)

	hours, err := u.workingHours(profile.WorkingHours(), req.WorkingHoursStart, req.WorkingHoursEnd)
	if err != nil {
		return nil, err
	}
	profile.WorkingHoursStart = hours.Start
	profile.WorkingHoursEnd = hours.End

	if req.Email != "" && req.Email != profile.User.Email {
		existing, err := u.userRepo.FindByEmail(tx, req.Email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}
		profile.User.Email = req.Email
	}
	if req.FullName != "" {
		profile.User.FullName = req.FullName
	}
	if req.IsActive != nil {
		profile.User.IsActive = req.IsActive
	}
	if req.LicenseNumber != "" {
		profile.LicenseNumber = req.LicenseNumber
	}
	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.Degree != "" {
		profile.Degree = req.Degree
	}
	if req.Experience != "" {
		profile.Experience = req.Experience
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
	}
	if req.Address != "" {
		profile.Address = req.Address
	}
	if err := applyFees(profile, req.Fees); err != nil {
		return nil, err
	}

	if err := u.userRepo.Update(tx, &profile.User); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to update doctor user: %+v", err)
		return nil, err
	}
	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrLicenseAlreadyExists
		}
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	newValue := converter.DoctorProfileToResponse(profile)
	if err := u.auditService.LogUpdate(tx, &actor.UserID, entity.AuditActionDoctorUpdate, "doctor_profile", doctorID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// UpdateSelfProfile lets a doctor change their password, biography, address
// and fees. New fees apply to appointments booked afterwards.
func (u *doctorProfileUsecase) UpdateSelfProfile(ctx context.Context, doctorID uuid.UUID, req *dto.DoctorUpdateSelfRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, entity.ErrDoctorNotFound
	}

	oldValue := converter.DoctorProfileToResponse(profile)

	updated := false
	passwordChanged := false
	if req.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(profile.User.Password), []byte(req.OldPassword)); err != nil {
			return nil, ErrInvalidOldPassword
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			u.log.Warnf("Failed to hash password: %+v", err)
			return nil, err
		}
		profile.User.Password = string(hashedPassword)
		passwordChanged = true
		updated = true
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
		updated = true
	}
	if req.Address != "" {
		profile.Address = req.Address
		updated = true
	}
	if req.Fees != nil {
		if err := applyFees(profile, req.Fees); err != nil {
			return nil, err
		}
		updated = true
	}

	if !updated {
		return oldValue, nil
	}

	if passwordChanged {
		if err := u.userRepo.Update(tx, &profile.User); err != nil {
			u.log.Warnf("Failed to update doctor user: %+v", err)
			return nil, err
		}
	}
	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	newValue := converter.DoctorProfileToResponse(profile)
	if err := u.auditService.LogUpdate(tx, &doctorID, entity.AuditActionDoctorUpdate, "doctor_profile", doctorID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// SetAvailability toggles whether a doctor accepts new bookings. Existing
// appointments are not affected.
func (u *doctorProfileUsecase) SetAvailability(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, available bool) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.doctorProfileRepo.SetAvailability(tx, doctorID, available)
	if err != nil {
		u.log.Warnf("Failed to set availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, entity.ErrDoctorNotFound
	}

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, entity.ErrDoctorNotFound
	}

	if err := u.auditService.LogUpdate(tx, &actor.UserID, entity.AuditActionDoctorAvailability, "doctor_profile", doctorID.String(), map[string]bool{"available": !available}, map[string]bool{"available": available}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// workingHours overlays the optional HH:MM bounds on base and validates the result.
func (u *doctorProfileUsecase) workingHours(base entity.WorkingHours, start, end string) (entity.WorkingHours, error) {
	hours := base
	if hours.SlotMinutes <= 0 {
		hours.SlotMinutes = u.policy.DefaultHours.SlotMinutes
	}
	if start != "" {
		t, err := entity.ParseSlotTime(start)
		if err != nil {
			return hours, entity.ErrInvalidWorkingTime.Wrap(err)
		}
		hours.Start = t
	}
	if end != "" {
		t, err := entity.ParseSlotTime(end)
		if err != nil {
			return hours, entity.ErrInvalidWorkingTime.Wrap(err)
		}
		hours.End = t
	}
	if err := hours.Validate(); err != nil {
		return hours, entity.ErrInvalidWorkingTime.Wrap(err)
	}
	return hours, nil
}

func applyFees(profile *entity.DoctorProfile, fees *decimal.Decimal) error {
	if fees == nil {
		return nil
	}
	if fees.IsNegative() {
		return entity.ErrInvalidFees
	}
	profile.Fees = *fees
	return nil
}
