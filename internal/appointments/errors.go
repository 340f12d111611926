package appointments

import "errors"

var (
	// ErrNotFound is returned when no appointment matches the id.
	ErrNotFound = errors.New("appointments: not found")

	// ErrNilAppointment is returned when a create is attempted without data.
	ErrNilAppointment = errors.New("appointments: nil appointment")
)
