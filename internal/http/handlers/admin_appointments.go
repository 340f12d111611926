package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/tenancy"
	"github.com/wolfman30/connectient/pkg/apperrors"
	"github.com/wolfman30/connectient/pkg/logging"
)

// AppointmentAdmin is the slice of the appointments service the portal uses.
type AppointmentAdmin interface {
	GetAppointment(ctx context.Context, id string) (*appointments.ConfirmationDetails, error)
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
	UpdateAppointmentSchedule(ctx context.Context, id string, isScheduled bool) (*appointments.Appointment, error)
	ScheduleAppointment(ctx context.Context, id, date, clock string) (*appointments.Appointment, error)
	CancelAppointment(ctx context.Context, id string) ([]appointments.Appointment, error)
	ListAppointments(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error)
	GetPractice(ctx context.Context, id *string) ([]practices.Practice, error)
}

// ConfirmationSender emails a scheduled appointment's confirmation.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, to string, details appointments.ConfirmationDetails, practice *practices.Practice) error
}

// AdminAppointmentsHandler serves the admin portal's appointment API. Every
// call is scoped to the practice of the session.
type AdminAppointmentsHandler struct {
	appointments AppointmentAdmin
	notifier     ConfirmationSender
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
}

// NewAdminAppointmentsHandler creates a new admin appointments handler.
func NewAdminAppointmentsHandler(appts AppointmentAdmin, notifier ConfirmationSender, m *metrics.BookingMetrics, logger *logging.Logger) *AdminAppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{
		appointments: appts,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// ListAppointmentsResponse wraps a page of appointments.
type ListAppointmentsResponse struct {
	Appointments []appointments.Appointment `json:"appointments"`
	Limit        int                        `json:"limit"`
	Offset       int                        `json:"offset"`
}

// ToggleScheduleRequest flips the scheduled flag.
type ToggleScheduleRequest struct {
	IsScheduled *bool `json:"is_scheduled"`
}

// ScheduleRequest assigns a concrete slot.
type ScheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ScheduleResponse reports the scheduled appointment and whether the
// confirmation email went out.
type ScheduleResponse struct {
	Appointment       *appointments.Appointment `json:"appointment"`
	ConfirmationSent  bool                      `json:"confirmation_sent"`
	ConfirmationError string                    `json:"confirmation_error,omitempty"`
}

// ListAppointments returns the practice's appointments.
// GET /admin/appointments?status=&from=&to=&limit=&offset=
func (h *AdminAppointmentsHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := appointments.ListFilter{
		Status: appointments.Status(strings.TrimSpace(q.Get("status"))),
		From:   strings.TrimSpace(q.Get("from")),
		To:     strings.TrimSpace(q.Get("to")),
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		jsonError(w, "invalid limit", http.StatusBadRequest)
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset")); err != nil {
		jsonError(w, "invalid offset", http.StatusBadRequest)
		return
	}

	list, err := h.appointments.ListAppointments(r.Context(), filter)
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	if list == nil {
		list = []appointments.Appointment{}
	}
	h.metrics.ObserveAdminAction("list", "ok")
	writeJSON(w, http.StatusOK, ListAppointmentsResponse{
		Appointments: list,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

// GetAppointment returns one appointment.
// GET /admin/appointments/{id}
func (h *AdminAppointmentsHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing id", http.StatusBadRequest)
		return
	}
	appt, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ToggleSchedule sets or clears the scheduled flag.
// PUT /admin/appointments/{id}/schedule
func (h *AdminAppointmentsHandler) ToggleSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ToggleScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil || req.IsScheduled == nil {
		jsonError(w, "is_scheduled is required", http.StatusBadRequest)
		return
	}
	appt, err := h.appointments.UpdateAppointmentSchedule(r.Context(), id, *req.IsScheduled)
	if err != nil {
		h.fail(w, "toggle_schedule", err)
		return
	}
	h.metrics.ObserveAdminAction("toggle_schedule", "ok")
	writeJSON(w, http.StatusOK, appt)
}

// Schedule assigns a date and time, then emails the patient a confirmation.
// A failed email does not undo the schedule.
// POST /admin/appointments/{id}/schedule
func (h *AdminAppointmentsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	appt, err := h.appointments.ScheduleAppointment(ctx, id, strings.TrimSpace(req.Date), strings.TrimSpace(req.Time))
	if err != nil {
		h.fail(w, "schedule", err)
		return
	}
	h.metrics.ObserveAdminAction("schedule", "ok")

	resp := ScheduleResponse{Appointment: appt}
	if err := h.sendConfirmation(ctx, appt); err != nil {
		resp.ConfirmationError = apperrors.MessageOf(err, "confirmation email could not be sent")
	} else {
		resp.ConfirmationSent = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminAppointmentsHandler) sendConfirmation(ctx context.Context, appt *appointments.Appointment) error {
	if h.notifier == nil {
		return apperrors.NewNotification("admin.schedule", "confirmation email is not configured", nil)
	}
	details, err := h.appointments.GetAppointment(ctx, appt.ID)
	if err != nil {
		h.logger.Error("failed to load confirmation details", "error", err, "appointment_id", appt.ID)
		return err
	}
	practice, err := h.sessionPractice(ctx)
	if err != nil {
		h.logger.Warn("practice lookup failed for confirmation", "error", err, "appointment_id", appt.ID)
		practice = nil
	}
	return h.notifier.SendConfirmation(ctx, appt.Email, *details, practice)
}

// Cancel marks an appointment cancelled.
// POST /admin/appointments/{id}/cancel
func (h *AdminAppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rows, err := h.appointments.CancelAppointment(r.Context(), id)
	if err != nil {
		h.fail(w, "cancel", err)
		return
	}
	h.metrics.ObserveAdminAction("cancel", "ok")
	writeJSON(w, http.StatusOK, map[string]any{"appointments": rows})
}

// GetPractice returns the session's practice.
// GET /admin/practice
func (h *AdminAppointmentsHandler) GetPractice(w http.ResponseWriter, r *http.Request) {
	practice, err := h.sessionPractice(r.Context())
	if err != nil {
		h.fail(w, "practice", err)
		return
	}
	writeJSON(w, http.StatusOK, practice)
}

func (h *AdminAppointmentsHandler) sessionPractice(ctx context.Context) (*practices.Practice, error) {
	practiceID, ok := tenancy.PracticeIDFromContext(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "admin.practice", "Sign in to manage appointments.", nil)
	}
	rows, err := h.appointments.GetPractice(ctx, &practiceID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("admin.practice", "Practice not found.")
	}
	return &rows[0], nil
}

func (h *AdminAppointmentsHandler) fail(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	h.metrics.ObserveAdminAction(action, strconv.Itoa(status))
	if status >= http.StatusInternalServerError {
		h.logger.Error("admin action failed", "action", action, "error", err)
	}
	writeError(w, err)
}

func queryInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.New(apperrors.KindValidation, "admin.query", "invalid number", err)
	}
	return n, nil
}
