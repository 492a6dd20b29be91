package usecase

import (
	"context"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const latestAppointmentsLimit = 5

type DashboardUsecase interface {
	GetAdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
	GetDoctorDashboard(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorDashboardResponse, error)
}

type dashboardUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
}

func NewDashboardUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
) DashboardUsecase {
	return &dashboardUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
	}
}

func (u *dashboardUsecase) GetAdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var (
		doctors, patients, appointments int64
		latest                          []entity.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		doctors, err = u.userRepo.CountByRole(u.db.WithContext(gctx), entity.RoleIDDoctor)
		return err
	})
	g.Go(func() (err error) {
		patients, err = u.userRepo.CountByRole(u.db.WithContext(gctx), entity.RoleIDPatient)
		return err
	})
	g.Go(func() (err error) {
		appointments, err = u.appointmentRepo.Count(u.db.WithContext(gctx))
		return err
	})
	g.Go(func() (err error) {
		latest, err = u.appointmentRepo.FindLatest(u.db.WithContext(gctx), nil, latestAppointmentsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build admin dashboard: %+v", err)
		return nil, err
	}

	return &dto.AdminDashboardResponse{
		Doctors:            doctors,
		Patients:           patients,
		Appointments:       appointments,
		LatestAppointments: converter.AppointmentsToResponses(latest),
	}, nil
}

func (u *dashboardUsecase) GetDoctorDashboard(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorDashboardResponse, error) {
	var (
		earnings decimal.Decimal
		patients int64
		appts    []entity.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		earnings, err = u.appointmentRepo.SumEarnings(u.db.WithContext(gctx), doctorID)
		return err
	})
	g.Go(func() (err error) {
		patients, err = u.appointmentRepo.CountDistinctPatients(u.db.WithContext(gctx), doctorID)
		return err
	})
	g.Go(func() (err error) {
		appts, err = u.appointmentRepo.FindByDoctorID(u.db.WithContext(gctx), doctorID)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build dashboard for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	latest := appts
	if len(latest) > latestAppointmentsLimit {
		latest = latest[:latestAppointmentsLimit]
	}

	return &dto.DoctorDashboardResponse{
		Earnings:           earnings,
		Appointments:       len(appts),
		Patients:           patients,
		LatestAppointments: converter.AppointmentsToResponses(latest),
	}, nil
}
