package pipeline

import (
	"fmt"
	"strings"
)

// UnknownFieldError reports a field name outside the closed set accepted for
// a selection, grouping or numeric lookup.
type UnknownFieldError struct {
	Kind    string
	Field   string
	Allowed []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s field %q (use one of: %s)", e.Kind, e.Field, strings.Join(e.Allowed, ", "))
}

// InvalidRangeError reports malformed filter bounds. It is a correctable
// input error, not a fatal one.
type InvalidRangeError struct {
	AgeMin, AgeMax int
	Reason         string
}

func (e *InvalidRangeError) Error() string {
	if e.Reason != "" {
		return "invalid range: " + e.Reason
	}
	return fmt.Sprintf("invalid range: age min %d is greater than age max %d", e.AgeMin, e.AgeMax)
}
