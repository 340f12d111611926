package booking

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/apperrors"
	"github.com/wolfman30/connectient/pkg/logging"
)

//go:embed views/*.html
var viewsFS embed.FS

var views = template.Must(template.ParseFS(viewsFS, "views/*.html"))

// PracticeResolver finds the practice behind a public code.
type PracticeResolver interface {
	Resolve(ctx context.Context, code string) (*practices.Practice, error)
}

// Handler serves the public booking pages.
type Handler struct {
	practices  PracticeResolver
	controller *Controller
	schema     *validation.Schema
	baseURL    string
	logger     *logging.Logger
}

// NewHandler creates the booking page handler.
func NewHandler(resolver PracticeResolver, controller *Controller, schema *validation.Schema, baseURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		practices:  resolver,
		controller: controller,
		schema:     schema,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type option struct {
	Value string
	Label string
}

type ogMeta struct {
	Title       string
	Description string
	URL         string
	Image       string
}

type pageData struct {
	Title          string
	OG             *ogMeta
	Practice       *practices.Practice
	Workflow       *Workflow
	Step           string
	Previewing     bool
	Hidden         map[string]string
	Action         string
	ValidateAction string
	MinDate        string
	MaxDate        string
	TimeOptions    []option
	TypeOptions    []option
}

var timeOptions = []option{
	{Value: string(appointments.TimeMorning), Label: "Morning"},
	{Value: string(appointments.TimeAfternoon), Label: "Afternoon"},
	{Value: string(appointments.TimeFlexible), Label: "Flexible"},
}

var typeOptions = func() []option {
	types := []appointments.Type{
		appointments.TypeExamination,
		appointments.TypeCleaning,
		appointments.TypeExtraction,
		appointments.TypeFilling,
		appointments.TypeOther,
	}
	out := make([]option, 0, len(types))
	for _, t := range types {
		out = append(out, option{Value: string(t), Label: t.Label()})
	}
	return out
}()

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", pageData{Title: "Connectient"})
}

// Show renders an empty booking form, or redirects to / when the practice
// code does not resolve.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	practice, ok := h.practice(w, r)
	if !ok {
		return
	}
	h.renderBook(w, http.StatusOK, h.controller.Start(practice))
}

// Submit handles the preview, back and confirm actions.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	practice, ok := h.practice(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := validation.FormFromValues(r.PostForm)
	wf := h.controller.Resume(practice, r.PostForm.Get("step"), form, r.PostForm.Get("token"))

	var err error
	switch r.PostForm.Get("action") {
	case "preview":
		err = h.controller.Preview(wf, form)
	case "back":
		err = h.controller.Back(wf)
	case "confirm":
		err = h.controller.Confirm(r.Context(), wf)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidTransition):
		h.logger.Warn("booking: out of order action", "practice_code", practice.Code, "error", err)
		wf = h.controller.Resume(practice, Editing.String(), form, "")
		wf.Failure = "Please review your request before confirming."
		status = http.StatusConflict
	case apperrors.KindOf(err) == apperrors.KindValidation:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}
	h.renderBook(w, status, wf)
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validate reports field errors for the posted form, judging dates on the
// practice's calendar. When "field" values are present only those fields are
// checked.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "practiceCode")
	practice, err := h.practices.Resolve(r.Context(), code)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			h.logger.Error("booking: practice lookup failed", "practice_code", code, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "practice not found"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}
	form := validation.FormFromValues(r.PostForm)
	schema := h.schema.ForTimezone(practice.Timezone)

	if fields := r.PostForm["field"]; len(fields) > 0 {
		err = schema.ValidateFields(form, fields...)
	} else {
		_, err = schema.Validate(form)
	}

	resp := validateResponse{Valid: err == nil, Errors: map[string]string{}}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Errors = verr.Fields
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) practice(w http.ResponseWriter, r *http.Request) (*practices.Practice, bool) {
	code := chi.URLParam(r, "practiceCode")
	practice, err := h.practices.Resolve(r.Context(), code)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			h.logger.Error("booking: practice lookup failed", "practice_code", code, "error", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, false
	}
	return practice, true
}

func (h *Handler) renderBook(w http.ResponseWriter, status int, wf *Workflow) {
	p := wf.Practice
	path := "/" + url.PathEscape(p.Code) + "/book"
	minDate, maxDate := h.schema.ForTimezone(p.Timezone).DateBounds()

	data := pageData{
		Title: p.Name,
		OG: &ogMeta{
			Title:       p.Name,
			Description: "Appointments Made Easy",
			URL:         h.baseURL + path,
			Image:       p.Logo,
		},
		Practice:       p,
		Workflow:       wf,
		Step:           wf.State().String(),
		Previewing:     wf.State() == Previewing,
		Action:         path,
		ValidateAction: path + "/validate",
		MinDate:        minDate,
		MaxDate:        maxDate,
		TimeOptions:    timeOptions,
		TypeOptions:    typeOptions,
	}
	if data.Previewing {
		data.Hidden = make(map[string]string)
		for k, v := range wf.Form.Values() {
			data.Hidden[k] = v[0]
		}
	}
	h.render(w, status, "book", data)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("booking: render failed", "template", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
