package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/connectient/pkg/apperrors"
)

// Error maps field names to human-readable messages. It never reaches the
// persistence layer.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation: invalid %s", strings.Join(names, ", "))
}

// Unwrap exposes the taxonomy kind so apperrors.KindOf and errors.Is work.
func (e *Error) Unwrap() error {
	return apperrors.New(apperrors.KindValidation, "validation", "please correct the highlighted fields", nil)
}

// Message returns the message for one field, or "".
func (e *Error) Message(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}
