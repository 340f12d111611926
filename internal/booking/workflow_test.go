package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/tenancy"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/apperrors"
)

type recordingCreator struct {
	created []*appointments.Appointment
	err     error
}

func (r *recordingCreator) CreateAppointment(_ context.Context, appt *appointments.Appointment) (*appointments.Appointment, error) {
	if r.err != nil {
		return nil, r.err
	}
	if appt.ID == "" {
		appt.ID = "a-1"
	}
	r.created = append(r.created, appt)
	return appt, nil
}

type recordingNotifier struct {
	sent int
	err  error
}

func (r *recordingNotifier) SendRequestReceived(context.Context, *appointments.Appointment, *practices.Practice) error {
	r.sent++
	return r.err
}

func fixedSchema(t *testing.T) *validation.Schema {
	t.Helper()
	loc, err := time.LoadLocation("America/Port_of_Spain")
	require.NoError(t, err)
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, loc)
	return validation.NewSchema(validation.WithLocation(loc), validation.WithClock(func() time.Time { return now }))
}

func testPractice() *practices.Practice {
	return &practices.Practice{ID: "p-1", Code: "smile", Name: "Smile Dental", Phone: "+18685550100", Logo: practices.DefaultLogo}
}

func joLee() validation.Form {
	return validation.Form{
		FirstName:       "Jo",
		LastName:        "Lee",
		MobilePhone:     "+18685551234",
		Email:           "jo@example.com",
		RequestedDate:   "2026-10-20",
		RequestedTime:   "flexible",
		AppointmentType: "examination",
		IsEmergency:     "no",
	}
}

func newTestController(t *testing.T, creator AppointmentCreator, notifier RequestNotifier, guard *SubmissionGuard) *Controller {
	t.Helper()
	return NewController(ControllerConfig{
		Schema:       fixedSchema(t),
		Appointments: creator,
		Notifier:     notifier,
		Guard:        guard,
		SupportPhone: "+18685550000",
	})
}

func TestWorkflowHappyPath(t *testing.T) {
	creator := &recordingCreator{}
	notifier := &recordingNotifier{}
	c := newTestController(t, creator, notifier, nil)

	wf := c.Start(testPractice())
	assert.Equal(t, Editing, wf.State())
	assert.Equal(t, validation.DefaultForm(), wf.Form)

	require.NoError(t, c.Preview(wf, joLee()))
	assert.Equal(t, Previewing, wf.State())
	assert.NotEmpty(t, wf.Token)
	assert.Equal(t, joLee(), wf.Form)

	require.NoError(t, c.Confirm(context.Background(), wf))
	assert.Equal(t, Editing, wf.State())
	assert.Equal(t, validation.DefaultForm(), wf.Form)
	assert.Equal(t, successNotice, wf.Notice)
	assert.Empty(t, wf.Token)

	require.Len(t, creator.created, 1)
	appt := creator.created[0]
	assert.Equal(t, "p-1", appt.PracticeID)
	assert.Equal(t, "2026-10-20", appt.RequestedDate)
	assert.Equal(t, appointments.TimeFlexible, appt.RequestedTime)
	assert.False(t, appt.IsEmergency)
	assert.Equal(t, 1, notifier.sent)
}

func TestPreviewRejectsInvalidFormBeforePersistence(t *testing.T) {
	creator := &recordingCreator{}
	c := newTestController(t, creator, nil, nil)
	wf := c.Start(testPractice())

	form := joLee()
	form.FirstName = "J"
	err := c.Preview(wf, form)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.Validation)
	assert.Equal(t, Editing, wf.State())
	assert.Contains(t, wf.Errors, "first_name")
	assert.Empty(t, creator.created)
}

func TestBackKeepsValues(t *testing.T) {
	c := newTestController(t, &recordingCreator{}, nil, nil)
	wf := c.Start(testPractice())
	require.NoError(t, c.Preview(wf, joLee()))

	require.NoError(t, c.Back(wf))
	assert.Equal(t, Editing, wf.State())
	assert.Equal(t, joLee(), wf.Form)
}

func TestConfirmFromEditingIsInvalid(t *testing.T) {
	creator := &recordingCreator{}
	c := newTestController(t, creator, nil, nil)
	wf := c.Resume(testPractice(), "editing", joLee(), "")

	err := c.Confirm(context.Background(), wf)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, creator.created)
}

func TestConfirmWhileSubmittingIsInvalid(t *testing.T) {
	c := newTestController(t, &recordingCreator{}, nil, nil)
	wf := c.Resume(testPractice(), "previewing", joLee(), "tok")
	wf.state = Submitting

	assert.ErrorIs(t, c.Confirm(context.Background(), wf), ErrInvalidTransition)
}

func TestConfirmFailureStaysInPreview(t *testing.T) {
	creator := &recordingCreator{err: apperrors.NewPersistence("appointments.create", "Failed to create appointment", errors.New("down"))}
	notifier := &recordingNotifier{}
	c := newTestController(t, creator, notifier, nil)
	wf := c.Resume(testPractice(), "previewing", joLee(), "tok")

	err := c.Confirm(context.Background(), wf)
	assert.ErrorIs(t, err, apperrors.Persistence)
	assert.Equal(t, Previewing, wf.State())
	assert.Equal(t, joLee(), wf.Form)
	assert.Equal(t, "Appointment request not sent, please try again or call the phone number +18685550100", wf.Failure)
	assert.Zero(t, notifier.sent)
}

func TestConfirmNotificationFailureKeepsBooking(t *testing.T) {
	creator := &recordingCreator{}
	notifier := &recordingNotifier{err: apperrors.NewNotification("notify.request_received", "Failed to send request email.", errors.New("550"))}
	c := newTestController(t, creator, notifier, nil)
	wf := c.Resume(testPractice(), "previewing", joLee(), "tok")

	require.NoError(t, c.Confirm(context.Background(), wf))
	assert.Len(t, creator.created, 1)
	assert.ErrorIs(t, wf.NotifyErr, apperrors.Notification)
	assert.Equal(t, successNotice, wf.Notice)
}

func TestRepeatedConfirmCreatesOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	creator := &recordingCreator{}
	c := newTestController(t, creator, nil, NewSubmissionGuard(client, time.Minute, nil))

	for i := 0; i < 3; i++ {
		wf := c.Resume(testPractice(), "previewing", joLee(), "same-token")
		require.NoError(t, c.Confirm(context.Background(), wf))
		if i > 0 {
			assert.Equal(t, duplicateNotice, wf.Notice)
		}
	}
	assert.Len(t, creator.created, 1)
}

func TestFailedConfirmReleasesGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	creator := &recordingCreator{err: errors.New("down")}
	c := newTestController(t, creator, nil, NewSubmissionGuard(client, time.Minute, nil))

	wf := c.Resume(testPractice(), "previewing", joLee(), "tok")
	require.Error(t, c.Confirm(context.Background(), wf))

	creator.err = nil
	wf = c.Resume(testPractice(), "previewing", joLee(), "tok")
	require.NoError(t, c.Confirm(context.Background(), wf))
	assert.Len(t, creator.created, 1)
}

func tenancyCtx(practiceID string) context.Context {
	return tenancy.WithPracticeID(context.Background(), practiceID)
}

func TestPreviewJudgesDatesOnPracticeCalendar(t *testing.T) {
	creator := &recordingCreator{}
	c := newTestController(t, creator, nil, nil)

	// The default clock reads 19 October in Port of Spain; Kiritimati is
	// already on 20 October, so a request for the 20th is same-day there.
	atoll := testPractice()
	atoll.Timezone = "Pacific/Kiritimati"

	wf := c.Start(atoll)
	err := c.Preview(wf, joLee())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, Editing, wf.State())
	assert.Contains(t, wf.Errors, "requested_date")

	next := joLee()
	next.RequestedDate = "2026-10-21"
	require.NoError(t, c.Preview(wf, next))
	require.NoError(t, c.Confirm(context.Background(), wf))
	require.Len(t, creator.created, 1)
	assert.Equal(t, "2026-10-21", creator.created[0].RequestedDate)
}

func TestConfirmRevalidatesOnPracticeCalendar(t *testing.T) {
	creator := &recordingCreator{}
	c := newTestController(t, creator, nil, nil)

	atoll := testPractice()
	atoll.Timezone = "Pacific/Kiritimati"
	wf := c.Resume(atoll, Previewing.String(), joLee(), "tok-1")

	require.Error(t, c.Confirm(context.Background(), wf))
	assert.Empty(t, creator.created)
	assert.Equal(t, Editing, wf.State())
}

func TestUnknownPracticeTimezoneFallsBack(t *testing.T) {
	c := newTestController(t, &recordingCreator{}, nil, nil)

	p := testPractice()
	p.Timezone = "Mars/Olympus_Mons"
	wf := c.Start(p)
	require.NoError(t, c.Preview(wf, joLee()))
}
