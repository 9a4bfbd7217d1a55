// Package frame implements the Cassandra/Scylla native protocol v4 wire
// format: frame header, primitive encodings, the CQL type system, and the
// request/response body shapes built on top of them.
package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"net"
	"unicode/utf8"
)

// Buffer is a bytes.Buffer with sticky error state, so a chain of writes or
// reads can be performed without checking an error after every call; the
// first error is latched and every later call to Error returns it.
type Buffer struct {
	buf bytes.Buffer
	err error
}

func (b *Buffer) Reset() {
	b.buf.Reset()
	b.err = nil
}

func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Buffer) Len() int {
	return b.buf.Len()
}

func (b *Buffer) Error() error {
	return b.err
}

func (b *Buffer) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Fail latches err as the buffer's error if none is set yet. Request
// builders that need to reject input locally (e.g. Batch's mixed
// named/positional values check) use this to report the failure through
// the same channel as a wire-level encoding error.
func (b *Buffer) Fail(err error) {
	b.fail(err)
}

// Write appends p verbatim.
func (b *Buffer) Write(p []byte) {
	if b.err != nil {
		return
	}
	b.buf.Write(p)
}

func (b *Buffer) WriteByte(v byte) {
	if b.err != nil {
		return
	}
	b.buf.WriteByte(v)
}

// Read consumes exactly len(p) bytes into p, failing the buffer if there
// aren't enough bytes remaining.
func (b *Buffer) Read(p []byte) {
	if b.err != nil {
		return
	}
	n, err := io.ReadFull(&b.buf, p)
	if err != nil || n != len(p) {
		b.fail(fmt.Errorf("%w: read %d bytes, wanted %d", ErrMalformedFrame, n, len(p)))
	}
}

// ReadN consumes and returns exactly n bytes.
func (b *Buffer) ReadN(n int) []byte {
	if b.err != nil {
		return nil
	}
	if n < 0 {
		b.fail(fmt.Errorf("%w: negative length %d", ErrMalformedFrame, n))
		return nil
	}
	p := make([]byte, n)
	b.Read(p)
	return p
}

// --- fixed-width integers, big-endian throughout ---

func (b *Buffer) WriteByteInt(v byte) { b.WriteByte(v) }

func (b *Buffer) WriteShort(v Short) {
	if b.err != nil {
		return
	}
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	b.buf.Write(tmp[:])
}

func (b *Buffer) ReadShort() Short {
	p := b.ReadN(2)
	if b.err != nil {
		return 0
	}
	return Short(binary.BigEndian.Uint16(p))
}

func (b *Buffer) WriteInt(v Int) {
	if b.err != nil {
		return
	}
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf.Write(tmp[:])
}

func (b *Buffer) ReadInt() Int {
	p := b.ReadN(4)
	if b.err != nil {
		return 0
	}
	return Int(binary.BigEndian.Uint32(p))
}

func (b *Buffer) WriteLong(v Long) {
	if b.err != nil {
		return
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.buf.Write(tmp[:])
}

func (b *Buffer) ReadLong() Long {
	p := b.ReadN(8)
	if b.err != nil {
		return 0
	}
	return Long(binary.BigEndian.Uint64(p))
}

// --- strings ---

// WriteString writes a [short length][utf8 bytes] string.
func (b *Buffer) WriteString(s string) {
	if b.err != nil {
		return
	}
	if len(s) > 0xFFFF {
		b.fail(fmt.Errorf("%w: string too long: %d bytes", ErrMalformedFrame, len(s)))
		return
	}
	b.WriteShort(Short(len(s)))
	b.buf.WriteString(s)
}

func (b *Buffer) ReadString() string {
	n := int(b.ReadShort())
	p := b.ReadN(n)
	if b.err != nil {
		return ""
	}
	if !utf8.Valid(p) {
		b.fail(fmt.Errorf("%w: string is not valid UTF-8", ErrMalformedFrame))
		return ""
	}
	return string(p)
}

// WriteLongString writes a [int length][utf8 bytes] string.
func (b *Buffer) WriteLongString(s string) {
	if b.err != nil {
		return
	}
	b.WriteInt(Int(len(s)))
	b.buf.WriteString(s)
}

func (b *Buffer) ReadLongString() string {
	n := int(b.ReadInt())
	p := b.ReadN(n)
	if b.err != nil {
		return ""
	}
	if !utf8.Valid(p) {
		b.fail(fmt.Errorf("%w: long string is not valid UTF-8", ErrMalformedFrame))
		return ""
	}
	return string(p)
}

// --- bytes / short bytes ---

// WriteBytes writes an [int length][bytes] value; nil encodes as length -1
// (null), a non-nil zero-length slice encodes as length 0.
func (b *Buffer) WriteBytes(p []byte) {
	if b.err != nil {
		return
	}
	if p == nil {
		b.WriteInt(-1)
		return
	}
	b.WriteInt(Int(len(p)))
	b.buf.Write(p)
}

// ReadBytes returns nil for a null value (length -1); callers that also
// need to distinguish not-set (length -2) should use ReadValue instead.
func (b *Buffer) ReadBytes() []byte {
	n := b.ReadInt()
	if b.err != nil {
		return nil
	}
	if n < 0 {
		return nil
	}
	return b.ReadN(int(n))
}

func (b *Buffer) WriteShortBytes(p []byte) {
	if b.err != nil {
		return
	}
	if len(p) > 0xFFFF {
		b.fail(fmt.Errorf("%w: short bytes too long: %d bytes", ErrMalformedFrame, len(p)))
		return
	}
	b.WriteShort(Short(len(p)))
	b.buf.Write(p)
}

func (b *Buffer) ReadShortBytes() []byte {
	n := int(b.ReadShort())
	return b.ReadN(n)
}

// --- CQL value (bytes/null/not-set), see §3 "CQL value" ---

// WriteValue writes a length-prefixed CQL value honoring the Null/NotSet
// sentinels: length -1 for Null, length -2 for NotSet.
func (b *Buffer) WriteValue(v Value) {
	if b.err != nil {
		return
	}
	switch {
	case v.IsNotSet():
		b.WriteInt(-2)
	case v.IsNull():
		b.WriteInt(-1)
	default:
		b.WriteInt(Int(len(v.Bytes)))
		b.buf.Write(v.Bytes)
	}
}

func (b *Buffer) ReadValue() Value {
	n := b.ReadInt()
	if b.err != nil {
		return Value{}
	}
	switch {
	case n == -2:
		return NotSetValue()
	case n == -1:
		return NullValue()
	default:
		return Value{Bytes: b.ReadN(int(n))}
	}
}

// --- string list / string multimap ---

func (b *Buffer) WriteStringList(l StringList) {
	if b.err != nil {
		return
	}
	b.WriteShort(Short(len(l)))
	for _, s := range l {
		b.WriteString(s)
	}
}

func (b *Buffer) ReadStringList() StringList {
	n := int(b.ReadShort())
	if b.err != nil {
		return nil
	}
	l := make(StringList, n)
	for i := range l {
		l[i] = b.ReadString()
	}
	return l
}

func (b *Buffer) WriteStringMultiMap(m map[string]StringList) {
	if b.err != nil {
		return
	}
	b.WriteShort(Short(len(m)))
	for k, v := range m {
		b.WriteString(k)
		b.WriteStringList(v)
	}
}

func (b *Buffer) ReadStringMultiMap() map[string]StringList {
	n := int(b.ReadShort())
	if b.err != nil {
		return nil
	}
	m := make(map[string]StringList, n)
	for i := 0; i < n; i++ {
		k := b.ReadString()
		m[k] = b.ReadStringList()
	}
	return m
}

// --- inet ---

func (b *Buffer) WriteInet(addr net.IP, port int32) {
	if b.err != nil {
		return
	}
	v4 := addr.To4()
	if v4 != nil {
		b.WriteByte(4)
		b.buf.Write(v4)
	} else {
		b.WriteByte(16)
		b.buf.Write(addr.To16())
	}
	b.WriteInt(Int(port))
}

func (b *Buffer) ReadInet() (net.IP, int32) {
	n := b.ReadN(1)
	if b.err != nil {
		return nil, 0
	}
	var ip net.IP
	switch n[0] {
	case 4, 16:
		ip = net.IP(b.ReadN(int(n[0])))
	default:
		b.fail(fmt.Errorf("%w: invalid inet address length %d", ErrMalformedFrame, n[0]))
		return nil, 0
	}
	return ip, int32(b.ReadInt())
}

// --- consistency ---

func (b *Buffer) WriteConsistency(c Consistency) {
	b.WriteShort(Short(c))
}

func (b *Buffer) ReadConsistency() Consistency {
	v := b.ReadShort()
	if b.err != nil {
		return 0
	}
	c := Consistency(v)
	if !c.Valid() {
		b.fail(fmt.Errorf("%w: unknown consistency level %d", ErrMalformedFrame, v))
		return 0
	}
	return c
}

// --- varint (arbitrary precision signed, two's complement, minimal length) ---

func (b *Buffer) WriteVarint(v *big.Int) {
	if b.err != nil {
		return
	}
	b.WriteBytes(encodeVarint(v))
}

func encodeVarint(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	if v.Sign() > 0 {
		p := v.Bytes()
		if p[0]&0x80 != 0 {
			p = append([]byte{0}, p...)
		}
		return p
	}
	// Two's complement for negative values: invert bits of (-v - 1).
	mag := new(big.Int).Add(v, big.NewInt(1))
	mag.Neg(mag)
	p := mag.Bytes()
	if len(p) == 0 {
		p = []byte{0}
	}
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = ^c
	}
	if out[0]&0x80 == 0 {
		out = append([]byte{0xFF}, out...)
	}
	return out
}

func decodeVarint(p []byte) *big.Int {
	if len(p) == 0 {
		return big.NewInt(0)
	}
	if p[0]&0x80 == 0 {
		return new(big.Int).SetBytes(p)
	}
	inv := make([]byte, len(p))
	for i, c := range p {
		inv[i] = ^c
	}
	mag := new(big.Int).SetBytes(inv)
	mag.Add(mag, big.NewInt(1))
	return mag.Neg(mag)
}

// CopyBuffer writes the buffer's bytes to w in one call.
func CopyBuffer(b *Buffer, w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// BufferWriter exposes b as an io.Writer, for io.CopyN-style streaming reads.
func BufferWriter(b *Buffer) io.Writer {
	return &bufferWriter{b}
}

type bufferWriter struct{ b *Buffer }

func (w *bufferWriter) Write(p []byte) (int, error) {
	w.b.Write(p)
	if err := w.b.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}
