package grid

import (
	"errors"
	"fmt"
)

var ErrIntegrity = errors.New("grid: integrity error")

// IntegrityError reports a sample or block count that disagrees with the
// geometry declared in a header. None of the supported formats carry a
// checksum, so this is the only corruption check available.
type IntegrityError struct {
	What     string
	Expected int
	Actual   int
	Detail   string
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("integrity: %s: expected %d, got %d", e.What, e.Expected, e.Actual)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// CheckCount fails with an IntegrityError when actual != expected.
func CheckCount(what string, expected, actual int) error {
	if expected != actual {
		return &IntegrityError{What: what, Expected: expected, Actual: actual}
	}
	return nil
}

// WarningKind classifies non-fatal decode conditions.
type WarningKind string

const (
	WarnUnsupportedTemplate   WarningKind = "unsupported_template"
	WarnAmbiguousAxis         WarningKind = "ambiguous_axis"
	WarnUnrecognizedByteOrder WarningKind = "unrecognized_byte_order"
)

// Warning is a condition the caller should see but that did not stop
// decoding.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("%s: %s: %s", w.Kind, w.Field, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
