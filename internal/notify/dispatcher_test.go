package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/pkg/apperrors"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func enabledConfig() DispatcherConfig {
	return DispatcherConfig{
		DefaultTo:        "bookings@connectient.co",
		SupportPhone:     "+18685550100",
		NotifyOnRequest:  true,
		NotifyOnSchedule: true,
	}
}

func testAppointment() *appointments.Appointment {
	return &appointments.Appointment{
		ID:              "a-1",
		PracticeID:      "p-1",
		FirstName:       "Jo",
		LastName:        "Lee",
		MobilePhone:     "+18685551234",
		Email:           "jo@example.com",
		RequestedDate:   "2026-10-20",
		RequestedTime:   appointments.TimeFlexible,
		AppointmentType: appointments.TypeCleaning,
		IsEmergency:     true,
	}
}

func TestSendRequestReceivedGoesToPractice(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, enabledConfig(), metrics.NewBookingMetrics(prometheus.NewRegistry()), nil)
	practice := &practices.Practice{ID: "p-1", Name: "Smile Dental", Email: "desk@smile.tt"}

	require.NoError(t, d.SendRequestReceived(context.Background(), testAppointment(), practice))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "desk@smile.tt", msg.To)
	assert.Equal(t, "jo@example.com", msg.ReplyTo)
	assert.Equal(t, "[EMERGENCY] New appointment request from Jo Lee", msg.Subject)
	assert.Contains(t, msg.Body, "Requested Appointment Date: Tuesday, October 20, 2026")
	assert.Contains(t, msg.Body, "Requested Appointment Time: Flexible")
	assert.Contains(t, msg.Body, "Requested Appointment Type: Cleaning/Polishing")
	assert.Contains(t, msg.Body, "Emergency: Yes")
	assert.Contains(t, msg.HTML, "<li>Name: Jo Lee</li>")
}

func TestSendRequestReceivedFallsBackToDefaultRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, enabledConfig(), nil, nil)

	require.NoError(t, d.SendRequestReceived(context.Background(), testAppointment(), &practices.Practice{Name: "Smile Dental"}))
	assert.Equal(t, "bookings@connectient.co", sender.sent[0].To)
}

func TestSendRequestReceivedTransportFailure(t *testing.T) {
	d := NewDispatcher(&recordingSender{err: errors.New("550 mailbox unavailable")}, enabledConfig(), nil, nil)

	err := d.SendRequestReceived(context.Background(), testAppointment(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.Notification)
	assert.Equal(t, "Failed to send request email.", apperrors.MessageOf(err, ""))
}

func TestSendRequestReceivedWithoutRecipient(t *testing.T) {
	cfg := enabledConfig()
	cfg.DefaultTo = ""
	sender := &recordingSender{}
	d := NewDispatcher(sender, cfg, nil, nil)

	err := d.SendRequestReceived(context.Background(), testAppointment(), &practices.Practice{Name: "Smile Dental"})
	assert.ErrorIs(t, err, apperrors.Notification)
	assert.Empty(t, sender.sent)
}

func TestSendConfirmationGoesToPatient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, enabledConfig(), nil, nil)
	details := appointments.ConfirmationDetails{
		FirstName:       "Jo",
		LastName:        "Lee",
		AppointmentType: appointments.TypeExamination,
		ScheduledDate:   "2026-10-22",
		ScheduledTime:   "09:30",
	}
	practice := &practices.Practice{Name: "Smile Dental", Phone: "+18685550199", Email: "desk@smile.tt"}

	require.NoError(t, d.SendConfirmation(context.Background(), "jo@example.com", details, practice))
	msg := sender.sent[0]
	assert.Equal(t, "jo@example.com", msg.To)
	assert.Equal(t, "Jo Lee", msg.ToName)
	assert.Equal(t, "desk@smile.tt", msg.ReplyTo)
	assert.Equal(t, "Your Smile Dental appointment is confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "Examination appointment with Smile Dental is confirmed for Thursday, October 22, 2026 at 09:30")
	assert.Contains(t, msg.Body, "+18685550199")
}

func TestDisabledNotificationsAreSkipped(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, DispatcherConfig{}, nil, nil)

	require.NoError(t, d.SendRequestReceived(context.Background(), testAppointment(), nil))
	require.NoError(t, d.SendConfirmation(context.Background(), "jo@example.com", appointments.ConfirmationDetails{}, nil))
	assert.Empty(t, sender.sent)
}
