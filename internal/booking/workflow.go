package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/logging"
)

const (
	successNotice   = "Your appointment request has been sent. The practice will contact you to confirm a time."
	duplicateNotice = "Your appointment request has already been received."
)

// AppointmentCreator persists a confirmed request.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, appt *appointments.Appointment) (*appointments.Appointment, error)
}

// RequestNotifier tells the practice about a new request.
type RequestNotifier interface {
	SendRequestReceived(ctx context.Context, appt *appointments.Appointment, practice *practices.Practice) error
}

// Workflow is one patient's pass through the booking flow. It is rebuilt
// from the posted form on every request; nothing survives a reload.
type Workflow struct {
	Practice *practices.Practice
	Form     validation.Form
	Errors   map[string]string
	Token    string
	Notice   string
	Failure  string

	// Created is set after a successful confirm.
	Created *appointments.Appointment
	// NotifyErr records a failed request-received email. The booking stands.
	NotifyErr error

	state State
}

// State returns the current step.
func (w *Workflow) State() State {
	return w.state
}

func (w *Workflow) transition(to State) error {
	if !canTransition(w.state, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, w.state, to)
	}
	w.state = to
	return nil
}

// Controller sequences preview and confirmation.
type Controller struct {
	schema       *validation.Schema
	appointments AppointmentCreator
	notifier     RequestNotifier
	guard        *SubmissionGuard
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	supportPhone string
}

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Schema       *validation.Schema
	Appointments AppointmentCreator
	Notifier     RequestNotifier
	Guard        *SubmissionGuard
	Metrics      *metrics.BookingMetrics
	Logger       *logging.Logger
	SupportPhone string
}

// NewController builds a Controller.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Schema == nil {
		panic("booking: schema required")
	}
	if cfg.Appointments == nil {
		panic("booking: appointment creator required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Controller{
		schema:       cfg.Schema,
		appointments: cfg.Appointments,
		notifier:     cfg.Notifier,
		guard:        cfg.Guard,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		supportPhone: cfg.SupportPhone,
	}
}

// Start opens an empty form.
func (c *Controller) Start(practice *practices.Practice) *Workflow {
	return &Workflow{Practice: practice, Form: validation.DefaultForm(), state: Editing}
}

// Resume rebuilds a workflow from a posted step and form.
func (c *Controller) Resume(practice *practices.Practice, step string, form validation.Form, token string) *Workflow {
	return &Workflow{Practice: practice, Form: form, Token: token, state: ParseState(step)}
}

// Preview validates the form and moves to Previewing. On validation failure
// the workflow stays in Editing with field errors set.
func (c *Controller) Preview(w *Workflow, form validation.Form) error {
	if w.state != Editing {
		return fmt.Errorf("%w: preview from %s", ErrInvalidTransition, w.state)
	}
	w.Form = form
	w.Errors = nil
	w.Failure = ""
	if _, err := c.schemaFor(w.Practice).Validate(form); err != nil {
		return c.rejected(w, err)
	}
	if err := w.transition(Previewing); err != nil {
		return err
	}
	w.Token = uuid.NewString()
	c.metrics.ObserveSubmission("previewed")
	return nil
}

// Back returns from the preview to the form, keeping the entered values.
func (c *Controller) Back(w *Workflow) error {
	if err := w.transition(Editing); err != nil {
		return err
	}
	w.Failure = ""
	return nil
}

// Confirm submits the previewed request once. On success the form is reset
// and a notice is set; on failure the workflow stays in Previewing with a
// message inviting the patient to retry or call the practice.
func (c *Controller) Confirm(ctx context.Context, w *Workflow) error {
	if err := w.transition(Submitting); err != nil {
		return err
	}
	started := time.Now()

	sub, err := c.schemaFor(w.Practice).Validate(w.Form)
	if err != nil {
		w.state = Editing
		return c.rejected(w, err)
	}

	if !c.guard.Acquire(ctx, w.Token) {
		c.logger.Info("booking: duplicate confirm ignored", "practice_id", w.Practice.ID)
		c.metrics.ObserveSubmission("duplicate")
		c.reset(w, duplicateNotice)
		return nil
	}

	appt := appointments.NewFromSubmission(w.Practice.ID, sub)
	created, err := c.appointments.CreateAppointment(ctx, appt)
	if err != nil {
		c.guard.Release(ctx, w.Token)
		w.Failure = c.failureMessage(w.Practice)
		if tErr := w.transition(Previewing); tErr != nil {
			return tErr
		}
		c.metrics.ObserveSubmission("failed")
		c.metrics.ObserveConfirmLatency("failed", time.Since(started).Seconds())
		return err
	}
	w.Created = created

	if c.notifier != nil {
		if nErr := c.notifier.SendRequestReceived(ctx, created, w.Practice); nErr != nil {
			w.NotifyErr = nErr
			c.logger.Error("booking: request notification failed", "appointment_id", created.ID, "error", nErr)
		}
	}

	c.metrics.ObserveSubmission("created")
	c.metrics.ObserveConfirmLatency("created", time.Since(started).Seconds())
	c.reset(w, successNotice)
	return nil
}

// schemaFor evaluates date rules on the practice's own calendar, falling back
// to the default zone when the practice has none on file.
func (c *Controller) schemaFor(practice *practices.Practice) *validation.Schema {
	if practice == nil {
		return c.schema
	}
	return c.schema.ForTimezone(practice.Timezone)
}

func (c *Controller) rejected(w *Workflow, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		w.Errors = verr.Fields
		c.metrics.ObserveValidationFailure(verr.Fields)
	}
	c.metrics.ObserveSubmission("invalid")
	return err
}

func (c *Controller) reset(w *Workflow, notice string) {
	w.state = Editing
	w.Form = validation.DefaultForm()
	w.Errors = nil
	w.Failure = ""
	w.Token = ""
	w.Notice = notice
}

func (c *Controller) failureMessage(practice *practices.Practice) string {
	return "Appointment request not sent, please try again or call the phone number " + practice.ContactPhone(c.supportPhone)
}
