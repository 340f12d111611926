// Package validation holds the booking form schema and its field rules.
package validation

import (
	"net/url"
	"strings"
	"time"
)

// Enumerations accepted by the booking form.
var (
	TimePreferences  = []string{"morning", "afternoon", "flexible"}
	AppointmentTypes = []string{"examination", "cleaning", "extraction", "filling", "other"}
)

// DefaultPhone prefills the phone input with the default calling code.
const DefaultPhone = "+1868"

// DateLayout is the wire format of requested_date.
const DateLayout = "2006-01-02"

const bookingHorizonMonths = 3

// Form is a candidate booking submission as posted by the browser.
type Form struct {
	FirstName       string `form:"first_name" validate:"required,min=2"`
	LastName        string `form:"last_name" validate:"required,min=2"`
	MobilePhone     string `form:"mobile_phone" validate:"required,phone"`
	Email           string `form:"email" validate:"required,email"`
	RequestedDate   string `form:"requested_date" validate:"required,isodate,future,notsunday,horizon=3"`
	RequestedTime   string `form:"requested_time" validate:"required,oneof=morning afternoon flexible"`
	AppointmentType string `form:"appointment_type" validate:"required,oneof=examination cleaning extraction filling other"`
	Description     string `form:"description" validate:"max=2000"`
	IsEmergency     string `form:"is_emergency" validate:"omitempty,oneof=yes no"`
}

// DefaultForm returns the values an empty booking form starts with.
func DefaultForm() Form {
	return Form{MobilePhone: DefaultPhone, IsEmergency: "no"}
}

// FormFromValues reads a Form from posted values. Missing keys keep their defaults.
func FormFromValues(values url.Values) Form {
	f := DefaultForm()
	set := func(dst *string, key string) {
		if _, ok := values[key]; ok {
			*dst = strings.TrimSpace(values.Get(key))
		}
	}
	set(&f.FirstName, "first_name")
	set(&f.LastName, "last_name")
	set(&f.MobilePhone, "mobile_phone")
	set(&f.Email, "email")
	set(&f.RequestedDate, "requested_date")
	set(&f.RequestedTime, "requested_time")
	set(&f.AppointmentType, "appointment_type")
	set(&f.Description, "description")
	set(&f.IsEmergency, "is_emergency")
	if f.IsEmergency == "" {
		f.IsEmergency = "no"
	}
	return f
}

// Values encodes the form back into posted values, used for hidden fields on
// the preview screen.
func (f Form) Values() url.Values {
	return url.Values{
		"first_name":       {f.FirstName},
		"last_name":        {f.LastName},
		"mobile_phone":     {f.MobilePhone},
		"email":            {f.Email},
		"requested_date":   {f.RequestedDate},
		"requested_time":   {f.RequestedTime},
		"appointment_type": {f.AppointmentType},
		"description":      {f.Description},
		"is_emergency":     {f.IsEmergency},
	}
}

// Submission is an accepted booking form with typed, normalized values.
type Submission struct {
	FirstName       string
	LastName        string
	MobilePhone     string
	Email           string
	RequestedDate   time.Time
	RequestedTime   string
	AppointmentType string
	Description     string
	IsEmergency     bool
}

// LoginForm is the admin sign-in form.
type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required,min=4"`
	Password string `form:"password" json:"password" validate:"required,min=8"`
}
