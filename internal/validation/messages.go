package validation

import "github.com/go-playground/validator/v10"

var fieldMessages = map[string]map[string]string{
	"first_name": {
		"*": "First name should be at least 2 characters",
	},
	"last_name": {
		"*": "Last name should be at least 2 characters",
	},
	"mobile_phone": {
		"required": "Phone number is required",
		"*":        "Please enter a valid phone number",
	},
	"email": {
		"*": "Invalid email",
	},
	"requested_date": {
		"required":  "A date is required",
		"isodate":   "A date is required",
		"future":    "Please choose a date after today",
		"notsunday": "Appointments are not available on Sundays",
		"horizon":   "Please choose a date within the next 3 months",
	},
	"requested_time": {
		"*": "Please select a time of day",
	},
	"appointment_type": {
		"*": "Please select an appointment type",
	},
	"description": {
		"*": "Description is too long",
	},
	"is_emergency": {
		"*": "Please answer yes or no",
	},
	"username": {
		"*": "Username must be at least 4 characters",
	},
	"password": {
		"*": "Password must be at least 8 characters",
	},
}

func messageFor(fe validator.FieldError) string {
	byTag, ok := fieldMessages[fe.Field()]
	if !ok {
		return "Invalid value"
	}
	if msg, ok := byTag[fe.Tag()]; ok {
		return msg
	}
	if msg, ok := byTag["*"]; ok {
		return msg
	}
	return "Invalid value"
}
