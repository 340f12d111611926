package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/practices"
)

func newTestRouter(t *testing.T) (http.Handler, *appointments.InMemoryRepository) {
	t.Helper()
	lookup := practices.NewService(practices.NewInMemoryRepository(practices.Practice{
		ID:    "p-1",
		Code:  "smile",
		Name:  "Smile Dental",
		Phone: "+18685550100",
	}, practices.Practice{
		ID:       "p-2",
		Code:     "atoll",
		Name:     "Atoll Family Dentistry",
		Timezone: "Pacific/Kiritimati",
	}), nil, nil)
	repo := appointments.NewInMemoryRepository()
	svc := appointments.NewService(repo, lookup, nil)
	schema := fixedSchema(t)
	c := NewController(ControllerConfig{Schema: schema, Appointments: svc})
	h := NewHandler(lookup, c, schema, "https://connectient.co", nil)

	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/{practiceCode}/book", h.Show)
	r.Post("/{practiceCode}/book", h.Submit)
	r.Post("/{practiceCode}/book/validate", h.Validate)
	return r, repo
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestShowUnknownPracticeRedirectsHome(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doesnotexist/book", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "<form")
}

func TestShowRendersBrandedForm(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/smile/book", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Smile Dental</title>")
	assert.Contains(t, body, `content="https://connectient.co/smile/book"`)
	assert.Contains(t, body, `src="/connectient-logo.png"`)
	assert.Contains(t, body, `name="mobile_phone" value="&#43;1868"`)
	assert.Contains(t, body, `min="2026-10-20"`)
	assert.Contains(t, body, `value="editing"`)
}

func TestBookingScenario(t *testing.T) {
	h, repo := newTestRouter(t)
	form := joLee().Values()

	form.Set("action", "preview")
	form.Set("step", "editing")
	rec := postForm(t, h, "/smile/book", form)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Appointment Preview")
	assert.Contains(t, body, "Name: Jo Lee")
	assert.Contains(t, body, "Email: jo@example.com")
	assert.Contains(t, body, "Requested Appointment Date: 2026-10-20")
	assert.Contains(t, body, "Requested Appointment Time: flexible")
	assert.Contains(t, body, "Requested Appointment Type: examination")
	assert.Contains(t, body, `value="previewing"`)

	form.Set("action", "confirm")
	form.Set("step", "previewing")
	rec = postForm(t, h, "/smile/book", form)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, successNotice)
	assert.Contains(t, body, `name="first_name" value=""`)
	assert.Contains(t, body, `value="editing"`)

	ctx := tenancyCtx("p-1")
	rows, err := repo.List(ctx, "p-1", appointments.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jo", rows[0].FirstName)
}

func TestSubmitInvalidFormReturns422(t *testing.T) {
	h, repo := newTestRouter(t)
	form := joLee().Values()
	form.Set("first_name", "J")
	form.Set("requested_date", "2026-10-25")
	form.Set("action", "preview")

	rec := postForm(t, h, "/smile/book", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "First name should be at least 2 characters")
	assert.Contains(t, body, "Appointments are not available on Sundays")

	rows, _ := repo.List(tenancyCtx("p-1"), "p-1", appointments.ListFilter{})
	assert.Empty(t, rows)
}

func TestSubmitConfirmWithoutPreviewConflicts(t *testing.T) {
	h, _ := newTestRouter(t)
	form := joLee().Values()
	form.Set("action", "confirm")
	form.Set("step", "editing")

	rec := postForm(t, h, "/smile/book", form)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please review your request before confirming.")
}

func TestSubmitBackRestoresForm(t *testing.T) {
	h, _ := newTestRouter(t)
	form := joLee().Values()
	form.Set("action", "back")
	form.Set("step", "previewing")

	rec := postForm(t, h, "/smile/book", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="first_name" value="Jo"`)
}

func TestSubmitUnknownAction(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := postForm(t, h, "/smile/book", url.Values{"action": {"explode"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	values := url.Values{"first_name": {"J"}, "field": {"first_name"}}
	rec := postForm(t, h, "/smile/book/validate", values)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, map[string]string{"first_name": "First name should be at least 2 characters"}, resp.Errors)

	rec = postForm(t, h, "/smile/book/validate", joLee().Values())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
}

func TestValidateUsesPracticeCalendar(t *testing.T) {
	h, _ := newTestRouter(t)

	// 10:00 in Port of Spain is already 20 October on Kiritimati.
	rec := postForm(t, h, "/atoll/book/validate", joLee().Values())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Errors, "requested_date")
}

func TestValidateUnknownPractice(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := postForm(t, h, "/doesnotexist/book/validate", joLee().Values())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowDateBoundsFollowPracticeCalendar(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/atoll/book", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `min="2026-10-21"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/smile/book", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `min="2026-10-20"`)
}

func TestHome(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Appointments Made Easy")
}
