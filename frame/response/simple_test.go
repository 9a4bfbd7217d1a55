package response

import (
	"testing"

	"github.com/scylla-go/cqldriver/frame"
)

func TestParseReady(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	got := ParseReady(&buf)
	if got == nil {
		t.Fatal("expected non-nil Ready")
	}
}

func TestParseSupported(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteStringMultiMap(map[string]frame.StringList{
		"CQL_VERSION": {"3.0.0"},
		"COMPRESSION": {"lz4", "snappy"},
	})

	got := ParseSupported(&buf)
	if len(got.Options["COMPRESSION"]) != 2 {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseAuthChallenge(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteBytes([]byte{0x01, 0x02})

	got := ParseAuthChallenge(&buf)
	if string(got.Token) != "\x01\x02" {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseAuthSuccess(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteBytes(nil)

	got := ParseAuthSuccess(&buf)
	if got.Token != nil {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

var dummyS *Supported
var dummyAC *AuthChallenge
var dummyAS *AuthSuccess

func FuzzSupported(f *testing.F) {
	f.Fuzz(func(t *testing.T, data []byte) { //nolint:thelper
		var buf frame.Buffer
		buf.Write(data)
		dummyS = ParseSupported(&buf)
	})
}

func FuzzAuthChallenge(f *testing.F) {
	f.Fuzz(func(t *testing.T, data []byte) { //nolint:thelper
		var buf frame.Buffer
		buf.Write(data)
		dummyAC = ParseAuthChallenge(&buf)
	})
}

func FuzzAuthSuccess(f *testing.F) {
	f.Fuzz(func(t *testing.T, data []byte) { //nolint:thelper
		var buf frame.Buffer
		buf.Write(data)
		dummyAS = ParseAuthSuccess(&buf)
	})
}
