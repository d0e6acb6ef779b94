// Package service contains the application services that coordinate
// domain rules and persistence into transactional operations.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain/schedule"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/logger"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// AppointmentService coordinates scheduling validation and appointment
// writes. Validation and the write share one transaction so the
// overlap check and the insert see the same bookings; the unique
// constraint on (date, start_time) backstops races the check misses.
type AppointmentService struct {
	db           *sql.DB
	appointments store.AppointmentStore
	comments     store.CommentStore
	validator    *schedule.Validator
	logger       *slog.Logger
}

// NewAppointmentService creates a new AppointmentService. If logger is nil,
// a default logger will be used.
func NewAppointmentService(
	db *sql.DB,
	appointments store.AppointmentStore,
	comments store.CommentStore,
	validator *schedule.Validator,
	logger *slog.Logger,
) *AppointmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentService{
		db:           db,
		appointments: appointments,
		comments:     comments,
		validator:    validator,
		logger:       logger.With(slog.String("component", "appointment_service")),
	}
}

// Create validates the appointment against the scheduling rules and
// saves it. Returns schedule.Violations when any rule fails, or a store
// error when the write fails.
func (s *AppointmentService) Create(ctx context.Context, appt *domain.Appointment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		appointments := s.appointments.WithTx(tx)

		existing, err := appointments.StartTimesOn(ctx, appt.Date, 0)
		if err != nil {
			return err
		}

		if violations := s.validator.Check(appt.Date, appt.StartTime, existing); len(violations) > 0 {
			log.Debug("appointment rejected by scheduling rules",
				slog.String("date", appt.Date.String()),
				slog.String("start_time", appt.StartTime.String()),
				slog.Int("violations", len(violations)))
			return violations
		}

		return appointments.Create(ctx, appt)
	})
}

// Update re-validates the modified appointment against the scheduling
// rules, excluding its own booked slot from the overlap check, and
// saves it.
func (s *AppointmentService) Update(ctx context.Context, appt *domain.Appointment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	appt.UpdatedAt = time.Now().UTC()

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		appointments := s.appointments.WithTx(tx)

		existing, err := appointments.StartTimesOn(ctx, appt.Date, appt.ID)
		if err != nil {
			return err
		}

		if violations := s.validator.Check(appt.Date, appt.StartTime, existing); len(violations) > 0 {
			log.Debug("appointment update rejected by scheduling rules",
				slog.Int64("appointment_id", appt.ID),
				slog.Int("violations", len(violations)))
			return violations
		}

		return appointments.Update(ctx, appt)
	})
}

// Reassign persists relationship-only changes to an appointment. The
// booked slot is untouched, so the scheduling rules are not re-run;
// a past appointment can still be re-categorized or re-owned.
func (s *AppointmentService) Reassign(ctx context.Context, appt *domain.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.appointments.WithTx(tx).Update(ctx, appt)
	})
}

// Delete removes an appointment. Its comments are removed with it.
func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	return s.appointments.Delete(ctx, id)
}

// AssociateComments re-points the listed comments at the appointment,
// atomically. The appointment is fetched first so a missing id fails
// with not-found rather than a half-applied update.
func (s *AppointmentService) AssociateComments(ctx context.Context, appointmentID int64, commentIDs []int64) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.appointments.WithTx(tx).GetByID(ctx, appointmentID); err != nil {
			return err
		}
		return s.comments.WithTx(tx).AssociateWithAppointment(ctx, appointmentID, commentIDs)
	})
}
