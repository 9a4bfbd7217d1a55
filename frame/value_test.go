package frame

import (
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/inf.v0"
)

func TestScalarEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		id     OptionID
		encode func() Value
		decode func(Value) (any, error)
		want   any
	}{
		{"boolean", BooleanID, func() Value { return EncodeBoolean(true) }, func(v Value) (any, error) { return v.AsBoolean() }, true},
		{"tinyint", TinyintID, func() Value { return EncodeTinyInt(-7) }, func(v Value) (any, error) { return v.AsTinyInt() }, int8(-7)},
		{"smallint", SmallintID, func() Value { return EncodeSmallInt(-1000) }, func(v Value) (any, error) { return v.AsSmallInt() }, int16(-1000)},
		{"int", IntID, func() Value { return EncodeInt(123456) }, func(v Value) (any, error) { return v.AsInt32() }, int32(123456)},
		{"bigint", BigintID, func() Value { return EncodeBigInt(-9_000_000_000) }, func(v Value) (any, error) { return v.AsBigInt() }, int64(-9_000_000_000)},
		{"float", FloatID, func() Value { return EncodeFloat(1.5) }, func(v Value) (any, error) { return v.AsFloat() }, float32(1.5)},
		{"double", DoubleID, func() Value { return EncodeDouble(3.25) }, func(v Value) (any, error) { return v.AsDouble() }, float64(3.25)},
		{"text", VarcharID, func() Value { return EncodeText("hello") }, func(v Value) (any, error) { return v.AsText() }, "hello"},
		{"blob", BlobID, func() Value { return EncodeBlob([]byte{1, 2, 3}) }, func(v Value) (any, error) { return v.AsBlob() }, []byte{1, 2, 3}},
		{"inet4", InetID, func() Value { return EncodeInet(net.IPv4(1, 2, 3, 4)) }, func(v Value) (any, error) { return v.AsInet() }, net.IPv4(1, 2, 3, 4).To4()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.encode()
			v.Type = &Option{ID: tc.id}
			got, err := tc.decode(v)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsMismatchedTag(t *testing.T) {
	v := EncodeInt(1)
	v.Type = &Option{ID: BooleanID}
	if _, err := v.AsInt32(); err == nil {
		t.Fatalf("expected type mismatch error, got nil")
	}
}

func TestVarintRoundTrip(t *testing.T) {
	want := big.NewInt(-123456789012345)
	v := EncodeVarint(want)
	v.Type = &Option{ID: VarintID}
	got, err := v.AsVarint()
	if err != nil {
		t.Fatalf("AsVarint: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("varint round trip: want %v, got %v", want, got)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	want := inf.NewDec(12345, 2)
	v := EncodeDecimal(want)
	v.Type = &Option{ID: DecimalID}
	got, err := v.AsDecimal()
	if err != nil {
		t.Fatalf("AsDecimal: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("decimal round trip: want %v, got %v", want, got)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	want := time.UnixMilli(1_700_000_000_123).UTC()
	v := EncodeTimestamp(want)
	v.Type = &Option{ID: TimestampID}
	got, err := v.AsTimestamp()
	if err != nil {
		t.Fatalf("AsTimestamp: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("timestamp round trip: want %v, got %v", want, got)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	var want UUID
	for i := range want {
		want[i] = byte(i)
	}
	v := EncodeUUID(want)
	v.Type = &Option{ID: UuidID}
	got, err := v.AsUUID()
	if err != nil {
		t.Fatalf("AsUUID: %v", err)
	}
	if got != want {
		t.Errorf("uuid round trip: want %v, got %v", want, got)
	}
}

func TestListRoundTrip(t *testing.T) {
	elemOpt := Option{ID: IntID}
	elems := []Value{EncodeInt(1), EncodeInt(2), EncodeInt(3)}
	v := EncodeList(elems)
	v.Type = &Option{ID: ListID, List: &elemOpt}

	got, err := v.AsList()
	if err != nil {
		t.Fatalf("AsList: %v", err)
	}
	if len(got) != len(elems) {
		t.Fatalf("expected %d elements, got %d", len(elems), len(got))
	}
	for i, e := range got {
		e.Type = &elemOpt
		n, err := e.AsInt32()
		if err != nil {
			t.Fatalf("element %d: %v", i, err)
		}
		if want := int32(i + 1); n != want {
			t.Errorf("element %d: want %d, got %d", i, want, n)
		}
	}
}

func TestNullAndNotSetValues(t *testing.T) {
	n := NullValue()
	if !n.IsNull() || n.IsNormal() || n.IsNotSet() {
		t.Errorf("NullValue: unexpected state flags")
	}
	ns := NotSetValue()
	if !ns.IsNotSet() || ns.IsNormal() || ns.IsNull() {
		t.Errorf("NotSetValue: unexpected state flags")
	}
	b := BytesValue([]byte("x"))
	if !b.IsNormal() || b.IsNull() || b.IsNotSet() {
		t.Errorf("BytesValue: unexpected state flags")
	}
}
