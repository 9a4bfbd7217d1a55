package frame

import (
	"errors"
	"fmt"
	"testing"
)

func TestBufferPrimitiveRoundTrip(t *testing.T) {
	var b Buffer
	b.WriteShort(42)
	b.WriteInt(-1234)
	b.WriteLong(9_000_000_000)
	b.WriteString("hello")
	b.WriteLongString("a longer string")
	b.WriteBytes([]byte{1, 2, 3})
	b.WriteShortBytes([]byte{4, 5})

	r := &b
	if got := r.ReadShort(); got != 42 {
		t.Errorf("ReadShort: want 42, got %d", got)
	}
	if got := r.ReadInt(); got != -1234 {
		t.Errorf("ReadInt: want -1234, got %d", got)
	}
	if got := r.ReadLong(); got != 9_000_000_000 {
		t.Errorf("ReadLong: want 9000000000, got %d", got)
	}
	if got := r.ReadString(); got != "hello" {
		t.Errorf("ReadString: want hello, got %q", got)
	}
	if got := r.ReadLongString(); got != "a longer string" {
		t.Errorf("ReadLongString: want %q, got %q", "a longer string", got)
	}
	if got := r.ReadBytes(); string(got) != "\x01\x02\x03" {
		t.Errorf("ReadBytes: unexpected %v", got)
	}
	if got := r.ReadShortBytes(); string(got) != "\x04\x05" {
		t.Errorf("ReadShortBytes: unexpected %v", got)
	}
	if err := r.Error(); err != nil {
		t.Fatalf("unexpected error after full round trip: %v", err)
	}
}

// TestBufferStickyError verifies that once the Buffer fails, every
// subsequent operation on the same Buffer becomes a no-op and the
// original error is preserved instead of being overwritten.
func TestBufferStickyError(t *testing.T) {
	var b Buffer
	b.WriteShort(1)

	firstErr := fmt.Errorf("boom")
	b.Fail(firstErr)
	if !errors.Is(b.Error(), firstErr) {
		t.Fatalf("Error() = %v, want %v", b.Error(), firstErr)
	}

	b.Fail(fmt.Errorf("second failure should be ignored"))
	if !errors.Is(b.Error(), firstErr) {
		t.Errorf("sticky error overwritten: got %v", b.Error())
	}

	if got := b.ReadShort(); got != 0 {
		t.Errorf("ReadShort after failure should return zero value, got %d", got)
	}
	if got := b.ReadString(); got != "" {
		t.Errorf("ReadString after failure should return empty string, got %q", got)
	}
}

func TestBufferReadPastEndFails(t *testing.T) {
	var b Buffer
	b.WriteByte(1)

	_ = b.ReadN(10)
	if b.Error() == nil {
		t.Fatalf("expected error reading past buffer end")
	}
}
