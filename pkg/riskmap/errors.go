package riskmap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound covers both a genuinely missing row and an ownership
// mismatch. The two are deliberately indistinguishable so the API never
// confirms the existence of another user's rows.
var ErrNotFound = errors.New("not found")

// ErrEditingDisabled is returned when edit mode is requested on a map
// whose config has allowEditing off.
var ErrEditingDisabled = errors.New("editing is disabled for this map")

// ErrNotEditing is returned for drag/save/discard calls outside edit mode.
var ErrNotEditing = errors.New("map is not in edit mode")

// ValidationError lists the required zone fields that were missing or
// empty. It is raised before any database call is attempted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
