package response

import (
	"fmt"

	"github.com/scylla-go/cqldriver/frame"
)

// ErrorCode is the int error code carried by an ERROR response (§4.6).
type ErrorCode frame.Int

const (
	CodeServer           ErrorCode = 0x0000
	CodeProtocol         ErrorCode = 0x000A
	CodeBadCredentials   ErrorCode = 0x0100
	CodeUnavailable      ErrorCode = 0x1000
	CodeOverloaded       ErrorCode = 0x1001
	CodeIsBootstrapping  ErrorCode = 0x1002
	CodeTruncateError    ErrorCode = 0x1003
	CodeWriteTimeout     ErrorCode = 0x1100
	CodeReadTimeout      ErrorCode = 0x1200
	CodeReadFailure      ErrorCode = 0x1300
	CodeFunctionFailure  ErrorCode = 0x1400
	CodeWriteFailure     ErrorCode = 0x1500
	CodeSyntaxError      ErrorCode = 0x2000
	CodeUnauthorized     ErrorCode = 0x2100
	CodeInvalid          ErrorCode = 0x2200
	CodeConfigError      ErrorCode = 0x2300
	CodeAlreadyExists    ErrorCode = 0x2400
	CodeUnprepared       ErrorCode = 0x2500
)

// WriteType classifies which kind of write timed out or failed (§4.6).
type WriteType string

const (
	WriteTypeSimple         WriteType = "SIMPLE"
	WriteTypeBatch          WriteType = "BATCH"
	WriteTypeUnloggedBatch  WriteType = "UNLOGGED_BATCH"
	WriteTypeCounter        WriteType = "COUNTER"
	WriteTypeBatchLog       WriteType = "BATCH_LOG"
)

// CodedError is any ERROR response body: an int code, a message, and a
// per-code structured payload (§4.6). All concrete variants below
// implement it.
type CodedError interface {
	error
	Code() ErrorCode
	Message() string
}

type baseError struct {
	code    ErrorCode
	message string
}

func (e baseError) Code() ErrorCode  { return e.code }
func (e baseError) Message() string  { return e.message }
func (e baseError) Error() string    { return fmt.Sprintf("%s: %s", e.code, e.message) }

func (c ErrorCode) String() string {
	switch c {
	case CodeServer:
		return "Server"
	case CodeProtocol:
		return "Protocol"
	case CodeBadCredentials:
		return "BadCredentials"
	case CodeUnavailable:
		return "Unavailable"
	case CodeOverloaded:
		return "Overloaded"
	case CodeIsBootstrapping:
		return "IsBootstrapping"
	case CodeTruncateError:
		return "TruncateError"
	case CodeWriteTimeout:
		return "WriteTimeout"
	case CodeReadTimeout:
		return "ReadTimeout"
	case CodeReadFailure:
		return "ReadFailure"
	case CodeFunctionFailure:
		return "FunctionFailure"
	case CodeWriteFailure:
		return "WriteFailure"
	case CodeSyntaxError:
		return "SyntaxError"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeInvalid:
		return "Invalid"
	case CodeConfigError:
		return "ConfigError"
	case CodeAlreadyExists:
		return "AlreadyExists"
	case CodeUnprepared:
		return "Unprepared"
	default:
		return fmt.Sprintf("ErrorCode(0x%04x)", frame.Int(c))
	}
}

// ServerError (0x0000): a generic server-side error with no extra payload.
type ServerError struct{ baseError }

// ProtocolError (0x000A): the client has violated the protocol.
type ProtocolError struct{ baseError }

// BadCredentialsError (0x0100): authentication credentials were rejected.
type BadCredentialsError struct{ baseError }

// UnavailableError (0x1000): not enough replicas are alive to satisfy
// the requested consistency.
type UnavailableError struct {
	baseError
	Consistency      frame.Consistency
	RequiredReplicas int32
	AliveReplicas    int32
}

// OverloadedError (0x1001): the coordinator is overloaded.
type OverloadedError struct{ baseError }

// IsBootstrappingError (0x1002): the coordinator is still bootstrapping.
type IsBootstrappingError struct{ baseError }

// TruncateError (0x1003): an error occurred during a truncation.
type TruncateError struct{ baseError }

// WriteTimeoutError (0x1100): a write request timed out waiting for the
// requested consistency to be reached.
type WriteTimeoutError struct {
	baseError
	Consistency frame.Consistency
	Received    int32
	BlockFor    int32
	WriteType   WriteType
}

// ReadTimeoutError (0x1200): a read request timed out waiting for the
// requested consistency to be reached.
type ReadTimeoutError struct {
	baseError
	Consistency frame.Consistency
	Received    int32
	BlockFor    int32
	DataPresent bool
}

// ReadFailureError (0x1300): a non-timeout error during a read.
type ReadFailureError struct {
	baseError
	Consistency  frame.Consistency
	Received     int32
	BlockFor     int32
	NumFailures  int32
	DataPresent  bool
}

// FunctionFailureError (0x1400): a user-defined function failed during
// execution.
type FunctionFailureError struct {
	baseError
	Keyspace string
	Function string
	ArgTypes frame.StringList
}

// WriteFailureError (0x1500): a non-timeout error during a write.
type WriteFailureError struct {
	baseError
	Consistency frame.Consistency
	Received    int32
	BlockFor    int32
	NumFailures int32
	WriteType   WriteType
}

// SyntaxError (0x2000): the submitted CQL could not be parsed.
type SyntaxError struct{ baseError }

// UnauthorizedError (0x2100): the logged-in user doesn't have
// permission to perform the requested operation.
type UnauthorizedError struct{ baseError }

// InvalidError (0x2200): the query is syntactically valid but invalid
// in its context.
type InvalidError struct{ baseError }

// ConfigError (0x2300): the query is invalid due to a configuration issue.
type ConfigError struct{ baseError }

// AlreadyExistsError (0x2400): the keyspace or table already exists.
type AlreadyExistsError struct {
	baseError
	Keyspace string
	Table    string // empty when only the keyspace already exists
}

// UnpreparedError (0x2500): the server forgot the prepared statement
// identified by ID; the caller MAY recover by re-preparing (§7).
type UnpreparedError struct {
	baseError
	ID []byte
}

// ParseError dispatches on the leading int error code and decodes the
// per-code payload. An unknown code fails b with frame.ErrMalformedFrame
// and returns nil (§4.6).
func ParseError(b *frame.Buffer) CodedError {
	code := ErrorCode(b.ReadInt())
	msg := b.ReadString()
	if b.Error() != nil {
		return nil
	}
	base := baseError{code: code, message: msg}

	switch code {
	case CodeServer:
		return &ServerError{base}
	case CodeProtocol:
		return &ProtocolError{base}
	case CodeBadCredentials:
		return &BadCredentialsError{base}
	case CodeUnavailable:
		return &UnavailableError{
			baseError:        base,
			Consistency:      b.ReadConsistency(),
			RequiredReplicas: int32(b.ReadInt()),
			AliveReplicas:    int32(b.ReadInt()),
		}
	case CodeOverloaded:
		return &OverloadedError{base}
	case CodeIsBootstrapping:
		return &IsBootstrappingError{base}
	case CodeTruncateError:
		return &TruncateError{base}
	case CodeWriteTimeout:
		return &WriteTimeoutError{
			baseError:   base,
			Consistency: b.ReadConsistency(),
			Received:    int32(b.ReadInt()),
			BlockFor:    int32(b.ReadInt()),
			WriteType:   WriteType(b.ReadString()),
		}
	case CodeReadTimeout:
		cons := b.ReadConsistency()
		received := int32(b.ReadInt())
		blockFor := int32(b.ReadInt())
		present := b.ReadN(1)
		if b.Error() != nil {
			return nil
		}
		return &ReadTimeoutError{
			baseError:   base,
			Consistency: cons,
			Received:    received,
			BlockFor:    blockFor,
			DataPresent: present[0] != 0,
		}
	case CodeReadFailure:
		cons := b.ReadConsistency()
		received := int32(b.ReadInt())
		blockFor := int32(b.ReadInt())
		numFailures := int32(b.ReadInt())
		present := b.ReadN(1)
		if b.Error() != nil {
			return nil
		}
		return &ReadFailureError{
			baseError:   base,
			Consistency: cons,
			Received:    received,
			BlockFor:    blockFor,
			NumFailures: numFailures,
			DataPresent: present[0] != 0,
		}
	case CodeFunctionFailure:
		return &FunctionFailureError{
			baseError: base,
			Keyspace:  b.ReadString(),
			Function:  b.ReadString(),
			ArgTypes:  b.ReadStringList(),
		}
	case CodeWriteFailure:
		return &WriteFailureError{
			baseError:   base,
			Consistency: b.ReadConsistency(),
			Received:    int32(b.ReadInt()),
			BlockFor:    int32(b.ReadInt()),
			NumFailures: int32(b.ReadInt()),
			WriteType:   WriteType(b.ReadString()),
		}
	case CodeSyntaxError:
		return &SyntaxError{base}
	case CodeUnauthorized:
		return &UnauthorizedError{base}
	case CodeInvalid:
		return &InvalidError{base}
	case CodeConfigError:
		return &ConfigError{base}
	case CodeAlreadyExists:
		return &AlreadyExistsError{
			baseError: base,
			Keyspace:  b.ReadString(),
			Table:     b.ReadString(),
		}
	case CodeUnprepared:
		return &UnpreparedError{
			baseError: base,
			ID:        b.ReadShortBytes(),
		}
	default:
		b.Fail(fmt.Errorf("%w: unknown error code 0x%04x", frame.ErrMalformedFrame, frame.Int(code)))
		return nil
	}
}
