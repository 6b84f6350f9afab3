// Package codec maps inari domain values to and from their JSON wire form.
//
// Every type has an explicit Encode/Decode pair. Decoding always goes
// through the core constructors, so a decoded value satisfies exactly the
// same invariants as a freshly built one.
package codec

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrUnknownKind   = errors.New("unknown transaction kind")
	ErrInvalidValue  = errors.New("invalid value")
	ErrMalformed     = errors.New("malformed document")
	ErrPrecisionLoss = errors.New("decimal cannot be represented as a float64 without loss")
)

// DecodeError describes why a wire document could not become a domain value.
// Field is a dotted path relative to Type (e.g. "kind.properties.duration").
type DecodeError struct {
	Type  string
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingField):
		return fmt.Sprintf("decode %s: missing field %q", e.Type, e.Field)
	case e.Field == "":
		return fmt.Sprintf("decode %s: %v", e.Type, e.Err)
	case e.Value != "":
		return fmt.Sprintf("decode %s: field %q: value %q: %v", e.Type, e.Field, e.Value, e.Err)
	default:
		return fmt.Sprintf("decode %s: field %q: %v", e.Type, e.Field, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when a value cannot be written without losing
// information, currently only for decimals that do not survive float64.
type EncodeError struct {
	Type  string
	Field string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: field %q: %v", e.Type, e.Field, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
