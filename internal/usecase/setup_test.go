package usecase

import (
	"context"
	"testing"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/gateway"
	domainRepo "go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/testutil"
	"go-medical-booking/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.PaymentOrder, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*gateway.PaymentOrder)
	return order, args.Error(1)
}

func (m *mockPaymentGateway) FetchOrder(ctx context.Context, ref string) (*gateway.PaymentOrder, error) {
	args := m.Called(ctx, ref)
	order, _ := args.Get(0).(*gateway.PaymentOrder)
	return order, args.Error(1)
}

type testEnv struct {
	db    *gorm.DB
	mr    *miniredis.Miniredis
	redis *redis.Client
	now   time.Time

	policy           BookingPolicy
	jwtService       *jwt.JWTService
	gateway          *mockPaymentGateway
	appointmentRepo  domainRepo.AppointmentRepository
	availabilityRepo domainRepo.AvailabilityRepository
	slotCache        *service.SlotCacheService

	appointments AppointmentUsecase
	slots        SlotUsecase
	payments     PaymentUsecase
	dashboards   DashboardUsecase
	doctors      DoctorProfileUsecase
	patients     PatientProfileUsecase
	auth         AuthUsecase
	auditLogs    AuditLogUsecase
}

// testNow is Tuesday 4 March 2025, 08:00 UTC, before the clinic opens.
var testNow = time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{now: testNow}
	env.db = testutil.NewDB(t)
	env.mr, env.redis = testutil.NewRedis(t)
	log := testutil.NewLogger()

	policy, err := NewBookingPolicy(config.BookingConfig{
		Timezone:     "UTC",
		Currency:     "USD",
		DefaultStart: "10:00",
		DefaultEnd:   "21:00",
		SlotMinutes:  30,
	})
	require.NoError(t, err)
	policy.Now = func() time.Time { return env.now }
	env.policy = policy

	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorProfileRepository()
	patientRepo := repository.NewPatientProfileRepository()
	outboxRepo := repository.NewOutboxRepository()
	auditRepo := repository.NewAuditLogRepository()
	env.appointmentRepo = repository.NewAppointmentRepository()
	env.availabilityRepo = repository.NewAvailabilityRepository()

	auditService := service.NewAuditService(log, auditRepo)
	env.slotCache = service.NewSlotCacheService(env.db, env.redis, log, env.availabilityRepo, 10*time.Minute, time.UTC)
	env.gateway = &mockPaymentGateway{}
	env.jwtService = jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})

	env.appointments = NewAppointmentUsecase(env.db, log, policy, env.appointmentRepo, env.availabilityRepo, doctorRepo, patientRepo, outboxRepo, auditService, env.slotCache)
	env.slots = NewSlotUsecase(env.db, log, policy, doctorRepo, env.slotCache)
	env.payments = NewPaymentUsecase(env.db, log, policy, env.appointmentRepo, outboxRepo, auditService, env.gateway, time.Second)
	env.dashboards = NewDashboardUsecase(env.db, log, userRepo, env.appointmentRepo)
	env.doctors = NewDoctorProfileUsecase(env.db, log, policy, userRepo, doctorRepo, auditService)
	env.patients = NewPatientProfileUsecase(env.db, log, userRepo, patientRepo, auditService)
	env.auth = NewAuthUsecase(env.db, log, userRepo, patientRepo, auditService, env.jwtService, env.redis)
	env.auditLogs = NewAuditLogUsecase(env.db, log, auditRepo)

	return env
}

func (e *testEnv) countOutbox(t *testing.T, eventType string, appointmentID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&entity.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", eventType, appointmentID).
		Count(&n).Error)
	return n
}

func (e *testEnv) countAudit(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&entity.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

// assertReservationsMatchLiveAppointments checks that the reservation table
// holds exactly the slots of non-cancelled appointments.
func (e *testEnv) assertReservationsMatchLiveAppointments(t *testing.T) {
	t.Helper()

	type slotKey struct {
		doctor uuid.UUID
		date   string
		time   entity.SlotTime
	}

	var reservations []entity.SlotReservation
	require.NoError(t, e.db.Find(&reservations).Error)
	var live []entity.Appointment
	require.NoError(t, e.db.Where("cancelled = ?", false).Find(&live).Error)

	reserved := make(map[slotKey]uuid.UUID)
	for _, r := range reservations {
		reserved[slotKey{r.DoctorID, r.SlotDate.Key(), r.SlotTime}] = r.AppointmentID
	}
	held := make(map[slotKey]uuid.UUID)
	for _, a := range live {
		held[slotKey{a.DoctorID, a.SlotDate.Key(), a.SlotTime}] = a.ID
	}
	require.Equal(t, held, reserved)
}
