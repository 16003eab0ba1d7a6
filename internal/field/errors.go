package field

import (
	"errors"
	"fmt"
)

var (
	ErrFieldDecode      = errors.New("field: decode error")
	ErrInvalidEnumIndex = errors.New("field: invalid enum index")
)

// DecodeError reports a field whose raw content could not be converted
// to its declared kind.
type DecodeError struct {
	Field string
	Raw   string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %q: cannot decode %q: %v", e.Field, e.Raw, e.Err)
	}
	return fmt.Sprintf("field %q: cannot decode %q", e.Field, e.Raw)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrFieldDecode }

// EnumIndexError reports an enumerated field whose index falls outside
// its label table.
type EnumIndexError struct {
	Field string
	Index int64
	Len   int
}

func (e *EnumIndexError) Error() string {
	return fmt.Sprintf("field %q: enum index %d outside [0,%d)", e.Field, e.Index, e.Len)
}

func (e *EnumIndexError) Is(target error) bool { return target == ErrInvalidEnumIndex }
