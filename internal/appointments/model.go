// Package appointments persists booking requests and the admin actions on them.
package appointments

import (
	"time"

	"github.com/wolfman30/connectient/internal/validation"
)

// TimePreference is the requested time of day.
type TimePreference string

const (
	TimeMorning   TimePreference = "morning"
	TimeAfternoon TimePreference = "afternoon"
	TimeFlexible  TimePreference = "flexible"
)

// Type is the kind of visit requested.
type Type string

const (
	TypeExamination Type = "examination"
	TypeCleaning    Type = "cleaning"
	TypeExtraction  Type = "extraction"
	TypeFilling     Type = "filling"
	TypeOther       Type = "other"
)

var typeLabels = map[Type]string{
	TypeExamination: "Examination",
	TypeCleaning:    "Cleaning/Polishing",
	TypeExtraction:  "Extraction",
	TypeFilling:     "Filling",
	TypeOther:       "Something Else",
}

// Label is the display name shown to patients and staff.
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Appointment is a patient's visit request. Rows are flagged, never deleted.
// Dates are calendar dates in YYYY-MM-DD form and scheduled_time is HH:MM.
type Appointment struct {
	ID              string         `json:"id"`
	PracticeID      string         `json:"practice_id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	MobilePhone     string         `json:"mobile_phone"`
	Email           string         `json:"email"`
	RequestedDate   string         `json:"requested_date"`
	RequestedTime   TimePreference `json:"requested_time"`
	AppointmentType Type           `json:"appointment_type"`
	Description     string         `json:"description,omitempty"`
	IsEmergency     bool           `json:"is_emergency"`
	IsScheduled     bool           `json:"is_scheduled"`
	ScheduledDate   string         `json:"scheduled_date,omitempty"`
	ScheduledTime   string         `json:"scheduled_time,omitempty"`
	IsCancelled     bool           `json:"is_cancelled"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ConfirmationDetails is the reduced shape used by the confirmation email.
type ConfirmationDetails struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	AppointmentType Type   `json:"appointment_type"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
}

// Confirmation projects the appointment onto ConfirmationDetails.
func (a *Appointment) Confirmation() ConfirmationDetails {
	return ConfirmationDetails{
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		AppointmentType: a.AppointmentType,
		ScheduledDate:   a.ScheduledDate,
		ScheduledTime:   a.ScheduledTime,
	}
}

// FullName joins first and last name.
func (a *Appointment) FullName() string {
	return a.FirstName + " " + a.LastName
}

// NewFromSubmission maps an accepted booking form onto a new appointment.
func NewFromSubmission(practiceID string, sub validation.Submission) *Appointment {
	return &Appointment{
		PracticeID:      practiceID,
		FirstName:       sub.FirstName,
		LastName:        sub.LastName,
		MobilePhone:     sub.MobilePhone,
		Email:           sub.Email,
		RequestedDate:   sub.RequestedDate.Format(validation.DateLayout),
		RequestedTime:   TimePreference(sub.RequestedTime),
		AppointmentType: Type(sub.AppointmentType),
		Description:     sub.Description,
		IsEmergency:     sub.IsEmergency,
	}
}

// Status narrows an admin listing.
type Status string

const (
	StatusAll         Status = ""
	StatusUnscheduled Status = "unscheduled"
	StatusScheduled   Status = "scheduled"
	StatusCancelled   Status = "cancelled"
	StatusEmergency   Status = "emergency"
)

// Valid reports whether s is a known status filter.
func (s Status) Valid() bool {
	switch s {
	case StatusAll, StatusUnscheduled, StatusScheduled, StatusCancelled, StatusEmergency:
		return true
	}
	return false
}

// ListFilter narrows ListAppointments. From and To bound requested_date
// inclusively.
type ListFilter struct {
	Status Status
	From   string
	To     string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	}
	return f.Limit
}
