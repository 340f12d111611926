package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/tenancy"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/apperrors"
	"github.com/wolfman30/connectient/pkg/logging"
)

var appointmentsTracer = otel.Tracer("connectient.internal.appointments")

// PracticeReader resolves practices by internal id.
type PracticeReader interface {
	ByID(ctx context.Context, id *string) ([]practices.Practice, error)
}

// Service exposes the appointment data actions. Every failure is returned as
// an *apperrors.Error; the underlying cause is logged, never shown.
type Service struct {
	repo      Repository
	practices PracticeReader
	logger    *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo Repository, practices PracticeReader, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, practices: practices, logger: logger}
}

// CreateAppointment inserts appt and returns the same value. A missing id is
// assigned before the insert.
func (s *Service) CreateAppointment(ctx context.Context, appt *Appointment) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.create")
	defer span.End()

	const msg = "Failed to create appointment"
	if appt == nil {
		s.logger.Error("failed to create appointment", "error", ErrNilAppointment)
		return nil, s.fail(span, apperrors.NewPersistence("appointments.create", msg, ErrNilAppointment))
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	span.SetAttributes(
		attribute.String("connectient.appointment_id", appt.ID),
		attribute.String("connectient.practice_id", appt.PracticeID),
	)

	if err := s.repo.Insert(ctx, appt); err != nil {
		s.logger.Error("failed to create appointment", "appointment_id", appt.ID, "practice_id", appt.PracticeID, "error", err)
		return nil, s.fail(span, apperrors.NewPersistence("appointments.create", msg, err))
	}
	s.logger.Info("appointment requested", "appointment_id", appt.ID, "practice_id", appt.PracticeID, "emergency", appt.IsEmergency)
	return appt, nil
}

// GetAppointment reads the confirmation projection for one appointment.
func (s *Service) GetAppointment(ctx context.Context, id string) (*ConfirmationDetails, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.get_confirmation")
	defer span.End()
	span.SetAttributes(attribute.String("connectient.appointment_id", id))

	details, err := s.repo.Confirmation(ctx, id)
	if err != nil {
		return nil, s.fail(span, s.readError("appointments.get", id, "Failed to find appointment.", err))
	}
	return details, nil
}

// Get reads the full appointment for the acting practice.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.get")
	defer span.End()

	practiceID, err := s.practiceScope(ctx, span, "appointments.get")
	if err != nil {
		return nil, err
	}
	appt, err := s.repo.Get(ctx, practiceID, id)
	if err != nil {
		return nil, s.fail(span, s.readError("appointments.get", id, "Failed to find appointment.", err))
	}
	return appt, nil
}

// UpdateAppointmentSchedule sets the scheduled flag.
func (s *Service) UpdateAppointmentSchedule(ctx context.Context, id string, isScheduled bool) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.update_schedule")
	defer span.End()
	span.SetAttributes(attribute.Bool("connectient.is_scheduled", isScheduled))

	practiceID, err := s.practiceScope(ctx, span, "appointments.update_schedule")
	if err != nil {
		return nil, err
	}
	appt, err := s.repo.SetScheduled(ctx, practiceID, id, isScheduled)
	if err != nil {
		return nil, s.fail(span, s.writeError("appointments.update_schedule", id, "Failed to update appointment schedule.", err))
	}
	s.logger.Info("appointment schedule updated", "appointment_id", id, "is_scheduled", isScheduled)
	return appt, nil
}

// ScheduleAppointment sets is_scheduled together with date (YYYY-MM-DD) and
// clock (HH:MM).
func (s *Service) ScheduleAppointment(ctx context.Context, id, date, clock string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.schedule")
	defer span.End()

	fields := map[string]string{}
	if _, err := time.Parse(validation.DateLayout, date); err != nil {
		fields["date"] = "A date is required"
	}
	if _, err := time.Parse("15:04", clock); err != nil {
		fields["time"] = "A time is required"
	}
	if len(fields) > 0 {
		return nil, s.fail(span, &validation.Error{Fields: fields})
	}

	practiceID, err := s.practiceScope(ctx, span, "appointments.schedule")
	if err != nil {
		return nil, err
	}
	appt, err := s.repo.Schedule(ctx, practiceID, id, date, clock)
	if err != nil {
		return nil, s.fail(span, s.writeError("appointments.schedule", id, "Failed to schedule appointment.", err))
	}
	s.logger.Info("appointment scheduled", "appointment_id", id, "scheduled_date", date, "scheduled_time", clock)
	return appt, nil
}

// CancelAppointment flags the appointment cancelled whatever its scheduling
// state and returns the updated rows.
func (s *Service) CancelAppointment(ctx context.Context, id string) ([]Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()

	practiceID, err := s.practiceScope(ctx, span, "appointments.cancel")
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Cancel(ctx, practiceID, id)
	if err != nil {
		return nil, s.fail(span, s.writeError("appointments.cancel", id, "Failed to cancel appointment.", err))
	}
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return rows, nil
}

// ListAppointments lists the acting practice's appointments.
func (s *Service) ListAppointments(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.list")
	defer span.End()

	if !filter.Status.Valid() {
		return nil, s.fail(span, &validation.Error{Fields: map[string]string{"status": "Unknown status filter"}})
	}
	practiceID, err := s.practiceScope(ctx, span, "appointments.list")
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, practiceID, filter)
	if err != nil {
		s.logger.Error("failed to list appointments", "practice_id", practiceID, "error", err)
		return nil, s.fail(span, apperrors.NewLookup("appointments.list", "Failed to load appointments.", err))
	}
	return rows, nil
}

// GetPractice reads the practice projection by id. A nil id yields no rows.
func (s *Service) GetPractice(ctx context.Context, id *string) ([]practices.Practice, error) {
	if s.practices == nil || id == nil {
		return nil, nil
	}
	return s.practices.ByID(ctx, id)
}

func (s *Service) practiceScope(ctx context.Context, span trace.Span, op string) (string, error) {
	practiceID, ok := tenancy.PracticeIDFromContext(ctx)
	if !ok {
		return "", s.fail(span, apperrors.New(apperrors.KindUnauthorized, op, "Sign in to manage appointments.", nil))
	}
	span.SetAttributes(attribute.String("connectient.practice_id", practiceID))
	return practiceID, nil
}

func (s *Service) readError(op, id, msg string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperrors.NewNotFound(op, "Appointment not found.")
	}
	s.logger.Error(msg, "appointment_id", id, "error", err)
	return apperrors.NewLookup(op, msg, err)
}

func (s *Service) writeError(op, id, msg string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperrors.NewNotFound(op, "Appointment not found.")
	}
	s.logger.Error(msg, "appointment_id", id, "error", err)
	return apperrors.NewPersistence(op, msg, err)
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
