package frame

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"net"
	"time"

	"gopkg.in/inf.v0"
)

// This file implements the CQL value codec (§4.2): encode converts a
// host value into the wire bytes for a column of a given Option
// (type descriptor); decode is the inverse. Every function validates the
// descriptor's tag against what it was asked to produce/consume and
// fails with ErrConversion on a mismatch, per §4.2's "Type-to-host
// mapping ... MUST validate the source type tag".

// wrap turns a decode failure into an ErrConversion-wrapped error naming
// both the CQL tag and the attempted host shape.
func wrap(id OptionID, host string, err error) error {
	return fmt.Errorf("%w: decoding %s as %s: %v", ErrConversion, id, host, err)
}

func mismatch(id OptionID, host string) error {
	return fmt.Errorf("%w: cannot decode %s as %s", ErrConversion, id, host)
}

// --- text types: ascii, varchar, text, custom ---

func EncodeText(s string) Value { return BytesValue([]byte(s)) }

func DecodeText(id OptionID, raw []byte) (string, error) {
	switch id {
	case AsciiID, VarcharID, CustomID:
		return string(raw), nil
	default:
		return "", mismatch(id, "text")
	}
}

// --- boolean ---

func EncodeBoolean(v bool) Value {
	if v {
		return BytesValue([]byte{1})
	}
	return BytesValue([]byte{0})
}

func DecodeBoolean(id OptionID, raw []byte) (bool, error) {
	if id != BooleanID {
		return false, mismatch(id, "boolean")
	}
	if len(raw) == 0 {
		return false, wrap(id, "boolean", fmt.Errorf("empty value"))
	}
	return raw[0] != 0, nil
}

// --- fixed-width signed integers: tinyint, smallint, int, bigint, counter ---

func EncodeTinyInt(v int8) Value { return BytesValue([]byte{byte(v)}) }

func DecodeTinyInt(id OptionID, raw []byte) (int8, error) {
	if id != TinyintID {
		return 0, mismatch(id, "tinyint")
	}
	if len(raw) != 1 {
		return 0, wrap(id, "tinyint", fmt.Errorf("expected 1 byte, got %d", len(raw)))
	}
	return int8(raw[0]), nil
}

func EncodeSmallInt(v int16) Value {
	p := make([]byte, 2)
	binary.BigEndian.PutUint16(p, uint16(v))
	return BytesValue(p)
}

func DecodeSmallInt(id OptionID, raw []byte) (int16, error) {
	if id != SmallintID {
		return 0, mismatch(id, "smallint")
	}
	if len(raw) != 2 {
		return 0, wrap(id, "smallint", fmt.Errorf("expected 2 bytes, got %d", len(raw)))
	}
	return int16(binary.BigEndian.Uint16(raw)), nil
}

func EncodeInt(v int32) Value {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, uint32(v))
	return BytesValue(p)
}

func DecodeInt(id OptionID, raw []byte) (int32, error) {
	if id != IntID {
		return 0, mismatch(id, "int")
	}
	if len(raw) != 4 {
		return 0, wrap(id, "int", fmt.Errorf("expected 4 bytes, got %d", len(raw)))
	}
	return int32(binary.BigEndian.Uint32(raw)), nil
}

func EncodeBigInt(v int64) Value {
	p := make([]byte, 8)
	binary.BigEndian.PutUint64(p, uint64(v))
	return BytesValue(p)
}

func DecodeBigInt(id OptionID, raw []byte) (int64, error) {
	if id != BigintID && id != CounterID {
		return 0, mismatch(id, "bigint")
	}
	if len(raw) != 8 {
		return 0, wrap(id, "bigint", fmt.Errorf("expected 8 bytes, got %d", len(raw)))
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

// --- varint: arbitrary precision two's complement, minimal length ---

func EncodeVarint(v *big.Int) Value { return BytesValue(encodeVarint(v)) }

func DecodeVarint(id OptionID, raw []byte) (*big.Int, error) {
	if id != VarintID {
		return nil, mismatch(id, "varint")
	}
	return decodeVarint(raw), nil
}

// --- float / double (IEEE 754) ---

func EncodeFloat(v float32) Value {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, math.Float32bits(v))
	return BytesValue(p)
}

func DecodeFloat(id OptionID, raw []byte) (float32, error) {
	if id != FloatID {
		return 0, mismatch(id, "float")
	}
	if len(raw) != 4 {
		return 0, wrap(id, "float", fmt.Errorf("expected 4 bytes, got %d", len(raw)))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(raw)), nil
}

func EncodeDouble(v float64) Value {
	p := make([]byte, 8)
	binary.BigEndian.PutUint64(p, math.Float64bits(v))
	return BytesValue(p)
}

func DecodeDouble(id OptionID, raw []byte) (float64, error) {
	if id != DoubleID {
		return 0, mismatch(id, "double")
	}
	if len(raw) != 8 {
		return 0, wrap(id, "double", fmt.Errorf("expected 8 bytes, got %d", len(raw)))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(raw)), nil
}

// --- decimal: (scale int, unscaled varint); plain = unscaled * 10^(-scale) ---

func EncodeDecimal(d *inf.Dec) Value {
	scale := int32(d.Scale())
	var buf Buffer
	buf.WriteInt(Int(scale))
	buf.Write(encodeVarint(d.UnscaledBig()))
	return BytesValue(buf.Bytes())
}

func DecodeDecimal(id OptionID, raw []byte) (*inf.Dec, error) {
	if id != DecimalID {
		return nil, mismatch(id, "decimal")
	}
	if len(raw) < 4 {
		return nil, wrap(id, "decimal", fmt.Errorf("expected at least 4 bytes, got %d", len(raw)))
	}
	scale := int32(binary.BigEndian.Uint32(raw[:4]))
	unscaled := decodeVarint(raw[4:])
	return inf.NewDecBig(unscaled, inf.Scale(scale)), nil
}

// --- date: 32-bit unsigned day offset, 2^31 is the Unix epoch ---

// Date is a signed day offset from the Unix epoch (1970-01-01); negative
// values are dates before the epoch.
type Date int32

const dateEpochOffset = int64(1) << 31

func EncodeDate(d Date) Value {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, uint32(int64(d)+dateEpochOffset))
	return BytesValue(p)
}

func DecodeDate(id OptionID, raw []byte) (Date, error) {
	if id != DateID {
		return 0, mismatch(id, "date")
	}
	if len(raw) != 4 {
		return 0, wrap(id, "date", fmt.Errorf("expected 4 bytes, got %d", len(raw)))
	}
	return Date(int64(binary.BigEndian.Uint32(raw)) - dateEpochOffset), nil
}

func (d Date) Time() time.Time {
	return time.Unix(0, 0).UTC().AddDate(0, 0, int(d))
}

func DateFromTime(t time.Time) Date {
	days := t.UTC().Sub(time.Unix(0, 0).UTC()).Hours() / 24
	return Date(int32(days))
}

// --- time: 64-bit signed nanoseconds since midnight ---

func EncodeTime(d time.Duration) Value { return EncodeBigIntRaw(int64(d)) }

func EncodeBigIntRaw(v int64) Value {
	p := make([]byte, 8)
	binary.BigEndian.PutUint64(p, uint64(v))
	return BytesValue(p)
}

func DecodeTime(id OptionID, raw []byte) (time.Duration, error) {
	if id != TimeID {
		return 0, mismatch(id, "time")
	}
	if len(raw) != 8 {
		return 0, wrap(id, "time", fmt.Errorf("expected 8 bytes, got %d", len(raw)))
	}
	return time.Duration(int64(binary.BigEndian.Uint64(raw))), nil
}

// --- timestamp: 64-bit signed milliseconds since the Unix epoch ---

func EncodeTimestamp(t time.Time) Value { return EncodeBigIntRaw(t.UnixMilli()) }

func DecodeTimestamp(id OptionID, raw []byte) (time.Time, error) {
	if id != TimestampID {
		return time.Time{}, mismatch(id, "timestamp")
	}
	if len(raw) != 8 {
		return time.Time{}, wrap(id, "timestamp", fmt.Errorf("expected 8 bytes, got %d", len(raw)))
	}
	ms := int64(binary.BigEndian.Uint64(raw))
	return time.UnixMilli(ms).UTC(), nil
}

// --- uuid / timeuuid ---

func EncodeUUID(u UUID) Value { return BytesValue(append([]byte(nil), u[:]...)) }

func DecodeUUID(id OptionID, raw []byte) (UUID, error) {
	if id != UuidID && id != TimeuuidID {
		return UUID{}, mismatch(id, "uuid")
	}
	u, err := UUIDFromBytes(raw)
	if err != nil {
		return UUID{}, wrap(id, "uuid", err)
	}
	return u, nil
}

// --- inet ---

func EncodeInet(ip net.IP) Value {
	if v4 := ip.To4(); v4 != nil {
		return BytesValue(v4)
	}
	return BytesValue(ip.To16())
}

func DecodeInet(id OptionID, raw []byte) (net.IP, error) {
	if id != InetID {
		return nil, mismatch(id, "inet")
	}
	switch len(raw) {
	case 4, 16:
		return net.IP(append([]byte(nil), raw...)), nil
	default:
		return nil, wrap(id, "inet", fmt.Errorf("expected 4 or 16 bytes, got %d", len(raw)))
	}
}

// --- blob: identity ---

func EncodeBlob(p []byte) Value { return BytesValue(p) }

func DecodeBlob(id OptionID, raw []byte) ([]byte, error) {
	if id != BlobID {
		return nil, mismatch(id, "blob")
	}
	return raw, nil
}

// --- list / set: int count, then n bytes-prefixed elements ---

func EncodeList(elems []Value) Value {
	var buf Buffer
	buf.WriteInt(Int(len(elems)))
	for _, e := range elems {
		buf.WriteValue(e)
	}
	return BytesValue(buf.Bytes())
}

// DecodeList parses a list/set body into its element Values; the caller
// further decodes each element with the element Option from o.List.
func DecodeList(o Option, raw []byte) ([]Value, error) {
	if o.ID != ListID && o.ID != SetID {
		return nil, mismatch(o.ID, "list")
	}
	var buf Buffer
	buf.Write(raw)
	n := buf.ReadInt()
	if buf.Error() != nil {
		return nil, wrap(o.ID, "list", buf.Error())
	}
	out := make([]Value, n)
	for i := range out {
		out[i] = buf.ReadValue()
		if buf.Error() != nil {
			return nil, wrap(o.ID, "list", buf.Error())
		}
	}
	return out, nil
}

// --- map: int count, then n * (bytes-prefixed key, bytes-prefixed value) ---

type MapEntry struct {
	Key   Value
	Value Value
}

func EncodeMap(entries []MapEntry) Value {
	var buf Buffer
	buf.WriteInt(Int(len(entries)))
	for _, e := range entries {
		buf.WriteValue(e.Key)
		buf.WriteValue(e.Value)
	}
	return BytesValue(buf.Bytes())
}

func DecodeMap(o Option, raw []byte) ([]MapEntry, error) {
	if o.ID != MapID {
		return nil, mismatch(o.ID, "map")
	}
	var buf Buffer
	buf.Write(raw)
	n := buf.ReadInt()
	if buf.Error() != nil {
		return nil, wrap(o.ID, "map", buf.Error())
	}
	out := make([]MapEntry, n)
	for i := range out {
		out[i].Key = buf.ReadValue()
		out[i].Value = buf.ReadValue()
		if buf.Error() != nil {
			return nil, wrap(o.ID, "map", buf.Error())
		}
	}
	return out, nil
}

// --- tuple: fixed number of bytes-prefixed elements; trailing elements
// may be missing for schema evolution (treated as null) ---

func EncodeTuple(elems []Value) Value {
	var buf Buffer
	for _, e := range elems {
		buf.WriteValue(e)
	}
	return BytesValue(buf.Bytes())
}

func DecodeTuple(o Option, raw []byte) ([]Value, error) {
	if o.ID != TupleID {
		return nil, mismatch(o.ID, "tuple")
	}
	var buf Buffer
	buf.Write(raw)
	out := make([]Value, len(o.Tuple))
	for i := range out {
		if buf.Len() == 0 {
			out[i] = NullValue()
			continue
		}
		out[i] = buf.ReadValue()
		if buf.Error() != nil {
			return nil, wrap(o.ID, "tuple", buf.Error())
		}
	}
	return out, nil
}

// --- udt: bytes-prefixed fields in declaration order; trailing fields
// may be missing for schema evolution (treated as null) ---

func EncodeUDT(fields []Value) Value {
	return EncodeTuple(fields)
}

func DecodeUDT(o Option, raw []byte) ([]Value, error) {
	if o.ID != UDTID {
		return nil, mismatch(o.ID, "udt")
	}
	var buf Buffer
	buf.Write(raw)
	out := make([]Value, len(o.UDT.FieldTypes))
	for i := range out {
		if buf.Len() == 0 {
			out[i] = NullValue()
			continue
		}
		out[i] = buf.ReadValue()
		if buf.Error() != nil {
			return nil, wrap(o.ID, "udt", buf.Error())
		}
	}
	return out, nil
}
