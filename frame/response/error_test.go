package response

import (
	"testing"

	"github.com/scylla-go/cqldriver/frame"
)

func TestParseErrorSimple(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		code ErrorCode
		want CodedError
	}{
		{"server", CodeServer, &ServerError{baseError{CodeServer, "boom"}}},
		{"protocol", CodeProtocol, &ProtocolError{baseError{CodeProtocol, "boom"}}},
		{"bad credentials", CodeBadCredentials, &BadCredentialsError{baseError{CodeBadCredentials, "boom"}}},
		{"overloaded", CodeOverloaded, &OverloadedError{baseError{CodeOverloaded, "boom"}}},
		{"bootstrapping", CodeIsBootstrapping, &IsBootstrappingError{baseError{CodeIsBootstrapping, "boom"}}},
		{"truncate", CodeTruncateError, &TruncateError{baseError{CodeTruncateError, "boom"}}},
		{"syntax", CodeSyntaxError, &SyntaxError{baseError{CodeSyntaxError, "boom"}}},
		{"unauthorized", CodeUnauthorized, &UnauthorizedError{baseError{CodeUnauthorized, "boom"}}},
		{"invalid", CodeInvalid, &InvalidError{baseError{CodeInvalid, "boom"}}},
		{"config", CodeConfigError, &ConfigError{baseError{CodeConfigError, "boom"}}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf frame.Buffer
			buf.WriteInt(frame.Int(tc.code))
			buf.WriteString("boom")
			got := ParseError(&buf)
			if got.Error() != tc.want.Error() {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if buf.Error() != nil {
				t.Fatalf("unexpected buffer error: %v", buf.Error())
			}
		})
	}
}

func TestParseErrorUnavailable(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeUnavailable))
	buf.WriteString("not enough replicas")
	buf.WriteConsistency(frame.QUORUM)
	buf.WriteInt(3)
	buf.WriteInt(1)

	got := ParseError(&buf)
	want := &UnavailableError{
		baseError:        baseError{CodeUnavailable, "not enough replicas"},
		Consistency:      frame.QUORUM,
		RequiredReplicas: 3,
		AliveReplicas:    1,
	}
	ue, ok := got.(*UnavailableError)
	if !ok || *ue != *want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseErrorWriteTimeout(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeWriteTimeout))
	buf.WriteString("timed out")
	buf.WriteConsistency(frame.ONE)
	buf.WriteInt(1)
	buf.WriteInt(2)
	buf.WriteString(string(WriteTypeSimple))

	got, ok := ParseError(&buf).(*WriteTimeoutError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	want := &WriteTimeoutError{
		baseError:   baseError{CodeWriteTimeout, "timed out"},
		Consistency: frame.ONE,
		Received:    1,
		BlockFor:    2,
		WriteType:   WriteTypeSimple,
	}
	if *got != *want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseErrorReadTimeout(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeReadTimeout))
	buf.WriteString("timed out")
	buf.WriteConsistency(frame.ONE)
	buf.WriteInt(1)
	buf.WriteInt(2)
	buf.WriteByte(1)

	got, ok := ParseError(&buf).(*ReadTimeoutError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if !got.DataPresent || got.Received != 1 || got.BlockFor != 2 {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseErrorReadFailure(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeReadFailure))
	buf.WriteString("failed")
	buf.WriteConsistency(frame.ONE)
	buf.WriteInt(1)
	buf.WriteInt(2)
	buf.WriteInt(1)
	buf.WriteByte(0)

	got, ok := ParseError(&buf).(*ReadFailureError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.DataPresent || got.NumFailures != 1 {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseErrorFunctionFailure(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeFunctionFailure))
	buf.WriteString("bad args")
	buf.WriteString("ks")
	buf.WriteString("fn")
	buf.WriteStringList(frame.StringList{"int", "text"})

	got, ok := ParseError(&buf).(*FunctionFailureError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.Keyspace != "ks" || got.Function != "fn" || len(got.ArgTypes) != 2 {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseErrorWriteFailure(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeWriteFailure))
	buf.WriteString("failed")
	buf.WriteConsistency(frame.ONE)
	buf.WriteInt(1)
	buf.WriteInt(2)
	buf.WriteInt(1)
	buf.WriteString(string(WriteTypeBatch))

	got, ok := ParseError(&buf).(*WriteFailureError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.WriteType != WriteTypeBatch || got.NumFailures != 1 {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseErrorAlreadyExists(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeAlreadyExists))
	buf.WriteString("already exists")
	buf.WriteString("ks")
	buf.WriteString("tbl")

	got, ok := ParseError(&buf).(*AlreadyExistsError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.Keyspace != "ks" || got.Table != "tbl" {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseErrorUnprepared(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(CodeUnprepared))
	buf.WriteString("unknown prepared id")
	buf.WriteShortBytes([]byte{0x01, 0x02, 0x03})

	got, ok := ParseError(&buf).(*UnpreparedError)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if string(got.ID) != "\x01\x02\x03" {
		t.Fatalf("unexpected id: %v", got.ID)
	}
}

func TestParseErrorUnknownCode(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(0x9999)
	buf.WriteString("mystery")

	got := ParseError(&buf)
	if got != nil {
		t.Fatalf("expected nil result, got %#v", got)
	}
	if buf.Error() == nil {
		t.Fatal("expected buffer error for unknown code")
	}
}

func FuzzParseError(f *testing.F) {
	var seed frame.Buffer
	seed.WriteInt(frame.Int(CodeUnavailable))
	seed.WriteString("seed")
	seed.WriteConsistency(frame.QUORUM)
	seed.WriteInt(1)
	seed.WriteInt(0)
	f.Add(seed.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) { //nolint:thelper
		var buf frame.Buffer
		buf.Write(data)
		_ = ParseError(&buf)
	})
}
