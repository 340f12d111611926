package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/notify/templates"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/pkg/apperrors"
	"github.com/wolfman30/connectient/pkg/logging"
)

var notifyTracer = otel.Tracer("connectient.internal.notify")

// DispatcherConfig controls recipients and which notifications are sent.
type DispatcherConfig struct {
	DefaultTo        string
	SupportPhone     string
	NotifyOnRequest  bool
	NotifyOnSchedule bool
}

// Dispatcher renders notification emails and hands them to an EmailSender.
// Sends are attempted once; a rejected send is returned as a Notification
// error for the caller to handle.
type Dispatcher struct {
	email    EmailSender
	renderer templates.Renderer
	cfg      DispatcherConfig
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher. A nil sender falls back to the stub.
func NewDispatcher(email EmailSender, cfg DispatcherConfig, m *metrics.BookingMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	return &Dispatcher{email: email, cfg: cfg, metrics: m, logger: logger}
}

// SendRequestReceived tells the practice a new request arrived. The message
// goes to the practice inbox, or DefaultTo when the practice has none.
func (d *Dispatcher) SendRequestReceived(ctx context.Context, appt *appointments.Appointment, practice *practices.Practice) error {
	const op = "notify.request_received"
	if !d.cfg.NotifyOnRequest {
		d.logger.Debug("notify: request notifications disabled")
		d.metrics.ObserveNotification(templateRequestReceived, "skipped")
		return nil
	}
	if appt == nil {
		return apperrors.NewNotification(op, "Failed to send request email.", fmt.Errorf("notify: appointment required"))
	}

	to := d.cfg.DefaultTo
	practiceName := "your practice"
	if practice != nil {
		practiceName = practice.Name
		if practice.Email != "" {
			to = practice.Email
		}
	}

	data := requestReceivedData{
		PracticeName:    practiceName,
		PatientName:     appt.FullName(),
		Email:           appt.Email,
		Phone:           appt.MobilePhone,
		RequestedDate:   humanDate(appt.RequestedDate),
		RequestedTime:   titleCase(string(appt.RequestedTime)),
		AppointmentType: appt.AppointmentType.Label(),
		Description:     appt.Description,
		Emergency:       appt.IsEmergency,
	}
	msg, err := d.render(templateRequestReceived, requestReceivedSubject, requestReceivedText, requestReceivedHTML, data)
	if err != nil {
		return d.failed(templateRequestReceived, op, "Failed to send request email.", err)
	}
	msg.To = to
	msg.ReplyTo = appt.Email

	return d.send(ctx, templateRequestReceived, op, "Failed to send request email.", msg,
		attribute.String("connectient.appointment_id", appt.ID))
}

// SendConfirmation tells the patient their appointment was scheduled.
func (d *Dispatcher) SendConfirmation(ctx context.Context, to string, details appointments.ConfirmationDetails, practice *practices.Practice) error {
	const op = "notify.confirmation"
	if !d.cfg.NotifyOnSchedule {
		d.logger.Debug("notify: confirmation notifications disabled")
		d.metrics.ObserveNotification(templateConfirmation, "skipped")
		return nil
	}

	data := confirmationData{
		PracticeName:    "your practice",
		PracticePhone:   d.cfg.SupportPhone,
		FirstName:       details.FirstName,
		LastName:        details.LastName,
		AppointmentType: details.AppointmentType.Label(),
		ScheduledDate:   humanDate(details.ScheduledDate),
		ScheduledTime:   details.ScheduledTime,
	}
	if practice != nil {
		data.PracticeName = practice.Name
		data.PracticePhone = practice.ContactPhone(d.cfg.SupportPhone)
	}
	msg, err := d.render(templateConfirmation, confirmationSubject, confirmationText, confirmationHTML, data)
	if err != nil {
		return d.failed(templateConfirmation, op, "Failed to send confirmation email.", err)
	}
	msg.To = to
	msg.ToName = strings.TrimSpace(details.FirstName + " " + details.LastName)
	if practice != nil {
		msg.ReplyTo = practice.Email
	}

	return d.send(ctx, templateConfirmation, op, "Failed to send confirmation email.", msg)
}

func (d *Dispatcher) render(name, subject, text, html string, data any) (EmailMessage, error) {
	msg := EmailMessage{Category: name}
	var err error
	if msg.Subject, err = d.renderer.Render(name+"_subject", subject, data); err != nil {
		return msg, err
	}
	if msg.Body, err = d.renderer.Render(name+"_text", text, data); err != nil {
		return msg, err
	}
	if msg.HTML, err = d.renderer.RenderHTML(name+"_html", html, data); err != nil {
		return msg, err
	}
	return msg, nil
}

func (d *Dispatcher) send(ctx context.Context, tmpl, op, userMsg string, msg EmailMessage, attrs ...attribute.KeyValue) error {
	ctx, span := notifyTracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(append(attrs, attribute.String("connectient.template", tmpl))...)

	if strings.TrimSpace(msg.To) == "" {
		err := fmt.Errorf("notify: no recipient for %s", tmpl)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return d.failed(tmpl, op, userMsg, err)
	}
	if err := d.email.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return d.failed(tmpl, op, userMsg, err)
	}
	d.metrics.ObserveNotification(tmpl, "sent")
	return nil
}

func (d *Dispatcher) failed(tmpl, op, userMsg string, err error) error {
	d.logger.Error("notification failed", "template", tmpl, "error", err)
	d.metrics.ObserveNotification(tmpl, "failed")
	return apperrors.NewNotification(op, userMsg, err)
}

func humanDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
