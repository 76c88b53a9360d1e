package validate

import (
	"fmt"
	"strings"
)

// Kind classifies a validation [Error].
type Kind string

// Error kinds.
const (
	TypeMismatch    Kind = "TypeMismatch"
	MissingRequired Kind = "MissingRequired"
	InvalidEnum     Kind = "InvalidEnum"
	InvalidQuantity Kind = "InvalidQuantity"
	PatternMismatch Kind = "PatternMismatch"
	BelowMinimum    Kind = "BelowMinimum"
	AboveMaximum    Kind = "AboveMaximum"
)

// Error is one validation failure at one path of one document.
//
// Which detail fields are set depends on Kind: Expected and Got for
// [TypeMismatch], Property for [MissingRequired], Allowed for [InvalidEnum],
// Pattern for [PatternMismatch], Limit for [BelowMinimum] and
// [AboveMaximum]. Value holds the offending value for every kind except
// [MissingRequired].
type Error struct {
	Value    any      `json:"value,omitempty"`
	Limit    *float64 `json:"limit,omitempty"`
	Path     string   `json:"path"`
	Kind     Kind     `json:"kind"`
	Expected string   `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
	Property string   `json:"property,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Allowed  []string `json:"allowed,omitempty"`
	DocIndex int      `json:"doc_index"`
}

// Error implements [error].
func (e *Error) Error() string {
	var msg string

	switch e.Kind {
	case TypeMismatch:
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
	case MissingRequired:
		msg = fmt.Sprintf("missing required property %q", e.Property)
	case InvalidEnum:
		msg = fmt.Sprintf("value %q is not one of [%s]", e.Value, strings.Join(e.Allowed, ", "))
	case InvalidQuantity:
		msg = fmt.Sprintf("invalid quantity %q", e.Value)
	case PatternMismatch:
		msg = fmt.Sprintf("value %q does not match pattern %q", e.Value, e.Pattern)
	case BelowMinimum:
		msg = fmt.Sprintf("value %v is below minimum %v", e.Value, deref(e.Limit))
	case AboveMaximum:
		msg = fmt.Sprintf("value %v is above maximum %v", e.Value, deref(e.Limit))
	default:
		msg = string(e.Kind)
	}

	return fmt.Sprintf("document %d: %s: %s", e.DocIndex, e.Path, msg)
}

// Errors is every [Error] found by one [Validator.Validate] call.
type Errors []*Error

// Error implements [error].
func (errs Errors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return strings.Join(msgs, "\n")
}

// Unwrap returns the individual errors.
func (errs Errors) Unwrap() []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		out = append(out, err)
	}

	return out
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}

	return *f
}
