package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go-medical-booking/config"
	deliveryHttp "go-medical-booking/internal/delivery/http"
	"go-medical-booking/internal/delivery/http/handler"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/infrastructure/cache"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/infrastructure/payment"
	"go-medical-booking/internal/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/jwt"
	"go-medical-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	// Embedded zone database so BOOKING_TIMEZONE works on minimal images.
	_ "time/tzdata"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Publisher   *service.OutboxPublisher
}

// NewLogger builds the JSON logger used across the application.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	app.Log = NewLogger(cfg.App.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	redisClient, err := cache.NewRedisClient(cfg.Redis, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

func (app *App) initialize() error {
	cfg, db, log := app.Config, app.DB, app.Log

	policy, err := usecase.NewBookingPolicy(cfg.Booking)
	if err != nil {
		return fmt.Errorf("invalid booking config: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	if err := repository.VerifySeededRoles(db, repository.NewRoleRepository()); err != nil {
		return fmt.Errorf("database schema check failed (run `migrate up`): %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	availabilityRepo := repository.NewAvailabilityRepository()
	outboxRepo := repository.NewOutboxRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Services
	auditService := service.NewAuditService(log, auditLogRepo)
	slotCache := service.NewSlotCacheService(db, app.RedisClient, log, availabilityRepo, cfg.SlotCache.TTL, policy.Location)
	app.Publisher = service.NewOutboxPublisher(db, log, outboxRepo, cfg.Kafka)
	stripeGateway := payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret, log)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, patientProfileRepo, auditService, jwtService, app.RedisClient)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, policy, userRepo, doctorProfileRepo, auditService)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(db, log, userRepo, patientProfileRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, policy, appointmentRepo, availabilityRepo, doctorProfileRepo, patientProfileRepo, outboxRepo, auditService, slotCache)
	slotUsecase := usecase.NewSlotUsecase(db, log, policy, doctorProfileRepo, slotCache)
	paymentUsecase := usecase.NewPaymentUsecase(db, log, policy, appointmentRepo, outboxRepo, auditService, stripeGateway, cfg.Payment.Timeout)
	dashboardUsecase := usecase.NewDashboardUsecase(db, log, userRepo, appointmentRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	router := deliveryHttp.NewRouter(
		deliveryHttp.Handlers{
			Auth:        handler.NewAuthHandler(authUsecase, customValidator, jwtService),
			Doctor:      handler.NewDoctorHandler(doctorProfileUsecase, customValidator),
			Patient:     handler.NewPatientHandler(patientProfileUsecase, customValidator),
			Appointment: handler.NewAppointmentHandler(appointmentUsecase, customValidator),
			Slot:        handler.NewSlotHandler(slotUsecase),
			Payment:     handler.NewPaymentHandler(paymentUsecase, stripeGateway, customValidator, log),
			Dashboard:   handler.NewDashboardHandler(dashboardUsecase),
			AuditLog:    handler.NewAuditLogHandler(auditLogUsecase),
		},
		middleware.NewAuthMiddleware(jwtService, app.RedisClient, log),
		middleware.NewCORSMiddleware(cfg.App.CORSOrigins),
		middleware.NewLoggingMiddleware(log),
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and the outbox publisher, then blocks until
// SIGINT or SIGTERM.
func (app *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Publisher.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		app.Log.Info("Shutting down server...")
	case runErr = <-serverErr:
		app.Log.Errorf("Server failed: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	cancel()
	wg.Wait()
	app.Close()

	app.Log.Info("Server shutdown complete")
	return runErr
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
