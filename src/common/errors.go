package common

import (
	"errors"
	"fmt"
)

// ErrType enumerates the contract violations reported by the protocol core.
type ErrType uint32

const (
	// InvalidSize is returned when a matrix dimension is zero.
	InvalidSize ErrType = iota
	// IndexOutOfRange is returned for node indices outside [0, N).
	IndexOutOfRange
	// MalformedMessage is returned when an inbound payload cannot be decoded.
	MalformedMessage
	// DimensionMismatch is returned when two matrices of different sizes meet.
	DimensionMismatch
)

// String ...
func (t ErrType) String() string {
	switch t {
	case InvalidSize:
		return "Invalid Size"
	case IndexOutOfRange:
		return "Index Out Of Range"
	case MalformedMessage:
		return "Malformed Message"
	case DimensionMismatch:
		return "Dimension Mismatch"
	default:
		return "Unknown"
	}
}

// ProtocolErr carries an ErrType together with the component that raised it
// and a short description.
type ProtocolErr struct {
	component string
	errType   ErrType
	msg       string
}

// NewProtocolErr ...
func NewProtocolErr(component string, errType ErrType, format string, args ...interface{}) ProtocolErr {
	return ProtocolErr{
		component: component,
		errType:   errType,
		msg:       fmt.Sprintf(format, args...),
	}
}

// Type returns the error class.
func (e ProtocolErr) Type() ErrType {
	return e.errType
}

// Error ...
func (e ProtocolErr) Error() string {
	return fmt.Sprintf("%s, %s, %s", e.component, e.errType, e.msg)
}

// Is checks that err, or an error it wraps, is a ProtocolErr of type t.
func Is(err error, t ErrType) bool {
	var pErr ProtocolErr
	return errors.As(err, &pErr) && pErr.errType == t
}
