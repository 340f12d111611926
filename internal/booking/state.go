// Package booking runs the patient-facing request flow: edit, preview,
// confirm, and feedback.
package booking

import "errors"

// State is the step of the booking flow the patient is on.
type State int

const (
	Editing State = iota
	Previewing
	Submitting
)

// ErrInvalidTransition is returned when an action does not apply to the
// current state.
var ErrInvalidTransition = errors.New("booking: invalid transition")

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Previewing:
		return "previewing"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// ParseState reads the hidden step field. Anything unrecognised restarts at
// Editing; Submitting is never accepted from the client.
func ParseState(step string) State {
	if step == Previewing.String() {
		return Previewing
	}
	return Editing
}

var transitions = map[State][]State{
	Editing:    {Previewing},
	Previewing: {Editing, Submitting},
	Submitting: {Editing, Previewing},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
