package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/auth"
	"github.com/wolfman30/connectient/internal/booking"
	"github.com/wolfman30/connectient/internal/http/handlers"
	"github.com/wolfman30/connectient/internal/notify"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/logging"
)

type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(_ context.Context, username, password string) (*auth.Principal, error) {
	if username == "frontdesk" && password == "correct horse" {
		return &auth.Principal{UserID: "u-1", PracticeID: "p-1", Username: username}, nil
	}
	return nil, auth.ErrInvalidCredentials
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", &strings.Builder{})
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)

	lookup := practices.NewService(practices.NewInMemoryRepository(practices.Practice{
		ID:    "p-1",
		Code:  "smile",
		Name:  "Smile Dental",
		Phone: "+18685550100",
	}), practices.StaticLogoResolver{}, logger)
	apptSvc := appointments.NewService(appointments.NewInMemoryRepository(), lookup, logger)
	schema := validation.NewSchema()
	dispatcher := notify.NewDispatcher(notify.NewStubEmailSender(logger), notify.DispatcherConfig{NotifyOnSchedule: true}, m, logger)
	controller := booking.NewController(booking.ControllerConfig{
		Schema:       schema,
		Appointments: apptSvc,
		Notifier:     dispatcher,
		Metrics:      m,
		Logger:       logger,
	})
	sessions := auth.NewSessionIssuer("router-secret", time.Hour)

	return New(&Config{
		Logger:            logger,
		Booking:           booking.NewHandler(lookup, controller, schema, "https://connectient.co", logger),
		AdminSession:      handlers.NewAdminSessionHandler(schema, staticAuthenticator{}, sessions, false, m, logger),
		AdminAppointments: handlers.NewAdminAppointmentsHandler(apptSvc, dispatcher, m, logger),
		Sessions:          sessions,
		MetricsHandler:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterBookingPages(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/smile/book", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Smile Dental")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/doesnotexist/book", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterAdminRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/admin/appointments", "/admin/practice"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRouterAdminLoginThenUseCookie(t *testing.T) {
	router := newTestRouter(t)

	login := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"frontdesk","password":"correct horse"}`))
	login.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, login)
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/admin/practice", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var p practices.Practice
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "Smile Dental", p.Name)

	req = httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"appointments":[]`)
}

func TestRouterAdminLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t)

	login := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"frontdesk","password":"wrong horse"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, login)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	login := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"frontdesk","password":"wrong horse"}`))
	router.ServeHTTP(httptest.NewRecorder(), login)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "connectient_admin_actions_total")
}
