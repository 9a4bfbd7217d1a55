package cqldriver

import (
	"errors"
	"fmt"

	"github.com/scylla-go/cqldriver/frame/response"
)

// ErrorCategory groups the ways a driver call can fail so callers can
// branch on the category without type-asserting every concrete cause.
type ErrorCategory int

const (
	// IOError is a transport-level failure: dial, read, write, timeout.
	IOError ErrorCategory = iota
	// ProtocolError is a malformed or unexpected frame.
	ProtocolError
	// CompressionError is a failure to compress/decompress a frame body.
	CompressionError
	// ConversionError is a failure converting a Go value to or from a
	// CQL wire value.
	ConversionError
	// ServerErrorCategory wraps a structured ERROR response (§3 "Error").
	ServerErrorCategory
	// GeneralError covers anything else (bad configuration, usage errors).
	GeneralError
)

func (c ErrorCategory) String() string {
	switch c {
	case IOError:
		return "io"
	case ProtocolError:
		return "protocol"
	case CompressionError:
		return "compression"
	case ConversionError:
		return "conversion"
	case ServerErrorCategory:
		return "server"
	default:
		return "general"
	}
}

// Error is the error type every exported driver call returns on
// failure; Category lets callers decide whether a failure is worth
// retrying without inspecting driver internals, Cause holds the
// underlying error for %w-based unwrapping.
type Error struct {
	Category ErrorCategory
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cqldriver: %s: %v", e.Category, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(cat ErrorCategory, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Category: cat, Cause: err}
}

// classify maps a transport-layer error onto a driver ErrorCategory: an
// error chain holding a response.CodedError becomes ServerErrorCategory
// and every other error becomes GeneralError. It does not derive the
// IO, protocol, compression or conversion categories from the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var coded response.CodedError
	if errors.As(err, &coded) {
		return newError(ServerErrorCategory, err)
	}
	return newError(GeneralError, err)
}
