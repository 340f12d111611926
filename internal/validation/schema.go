package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Schema evaluates booking and login forms.
type Schema struct {
	validate *validator.Validate
	region   string
	loc      *time.Location
	now      func() time.Time

	// zones holds per-practice schemas keyed by IANA name. Derived schemas
	// share their parent's map.
	zones *sync.Map
}

// Option configures a Schema.
type Option func(*Schema)

// WithRegion sets the region used to parse numbers without a calling code.
func WithRegion(region string) Option {
	return func(s *Schema) {
		if region != "" {
			s.region = strings.ToUpper(region)
		}
	}
}

// WithLocation sets the location that defines "today" for date rules.
func WithLocation(loc *time.Location) Option {
	return func(s *Schema) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Schema) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSchema builds a schema. Defaults: region TT, UTC, time.Now.
func NewSchema(opts ...Option) *Schema {
	s := &Schema{
		validate: validator.New(),
		region:   "TT",
		loc:      time.UTC,
		now:      time.Now,
		zones:    &sync.Map{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	s.registerRules()
	return s
}

// ForTimezone returns a schema whose date rules treat "today" as the current
// day in the named zone, so each practice books against its own calendar.
// An empty or unknown name yields s.
func (s *Schema) ForTimezone(name string) *Schema {
	name = strings.TrimSpace(name)
	if name == "" || name == s.loc.String() {
		return s
	}
	if cached, ok := s.zones.Load(name); ok {
		return cached.(*Schema)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return s
	}
	derived := NewSchema(WithRegion(s.region), WithLocation(loc), WithClock(s.now))
	derived.zones = s.zones
	actual, _ := s.zones.LoadOrStore(name, derived)
	return actual.(*Schema)
}

// Location returns the zone the date rules are evaluated in.
func (s *Schema) Location() *time.Location {
	return s.loc
}

// Validate checks every field and returns the accepted submission.
func (s *Schema) Validate(f Form) (Submission, error) {
	f = trimmed(f)
	if fields := s.check(f); len(fields) > 0 {
		return Submission{}, &Error{Fields: fields}
	}

	phone, _ := s.normalizePhone(f.MobilePhone)
	date, _ := s.parseDate(f.RequestedDate)
	return Submission{
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		MobilePhone:     phone,
		Email:           f.Email,
		RequestedDate:   date,
		RequestedTime:   f.RequestedTime,
		AppointmentType: f.AppointmentType,
		Description:     f.Description,
		IsEmergency:     f.IsEmergency == "yes",
	}, nil
}

// ValidateFields checks only the named fields, for feedback while the patient
// is still typing. Unknown names are ignored.
func (s *Schema) ValidateFields(f Form, names ...string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	fields := make(map[string]string)
	for name, msg := range s.check(trimmed(f)) {
		if want[name] {
			fields[name] = msg
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

// ValidateLogin checks the admin sign-in form.
func (s *Schema) ValidateLogin(f LoginForm) error {
	fields := s.fieldErrors(s.validate.Struct(f))
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

func (s *Schema) check(f Form) map[string]string {
	return s.fieldErrors(s.validate.Struct(f))
}

func (s *Schema) fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = messageFor(fe)
		}
	}
	return out
}

func trimmed(f Form) Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.MobilePhone = strings.TrimSpace(f.MobilePhone)
	f.Email = strings.TrimSpace(f.Email)
	f.RequestedDate = strings.TrimSpace(f.RequestedDate)
	f.Description = strings.TrimSpace(f.Description)
	if f.IsEmergency == "" {
		f.IsEmergency = "no"
	}
	return f
}

// DateBounds returns the first and last bookable dates for the date picker.
func (s *Schema) DateBounds() (first, last string) {
	today := s.today()
	return today.AddDate(0, 0, 1).Format(DateLayout), today.AddDate(0, bookingHorizonMonths, 0).Format(DateLayout)
}
