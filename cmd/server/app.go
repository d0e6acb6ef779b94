package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/config"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain/schedule"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/postgres"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service/auth"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	appointmentStore store.AppointmentStore
	categoryStore    store.CategoryStore
	commentStore     store.CommentStore
	userStore        store.UserStore
	tokenStore       store.TokenStore

	// Service interfaces
	jwtService         auth.JWTService
	passwordHasher     auth.PasswordHasher
	passwordVerifier   auth.PasswordVerifier
	appointmentService *service.AppointmentService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.appointmentStore = postgres.NewPostgresAppointmentStore(db, logger)
	app.categoryStore = postgres.NewPostgresCategoryStore(db, logger)
	app.commentStore = postgres.NewPostgresCommentStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.tokenStore = postgres.NewPostgresTokenStore(db, logger)

	validator, err := scheduleValidator(cfg.Office)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule validator: %w", err)
	}

	app.appointmentService = service.NewAppointmentService(
		db,
		app.appointmentStore,
		app.commentStore,
		validator,
		logger,
	)

	logger.Info("Application dependencies initialized")
	return app, nil
}

// scheduleValidator turns the office configuration into the scheduling
// rule set applied to every appointment write.
func scheduleValidator(cfg config.OfficeConfig) (*schedule.Validator, error) {
	open, err := domain.ParseTimeOfDay(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid office open time %q: %w", cfg.OpenTime, err)
	}
	closeTime, err := domain.ParseTimeOfDay(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid office close time %q: %w", cfg.CloseTime, err)
	}

	params := schedule.Params{
		OpenTime:  open,
		CloseTime: closeTime,
		Slot:      time.Duration(cfg.SlotMinutes) * time.Minute,
	}
	return schedule.NewValidator(params, time.Now), nil
}

// cleanup releases resources held by the application. It is called during
// graceful shutdown after the HTTP server has stopped accepting requests.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		} else {
			app.logger.Info("Database connection closed")
		}
	}
}
