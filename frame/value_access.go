package frame

import (
	"fmt"
	"math/big"
	"net"
	"reflect"
	"time"

	"gopkg.in/inf.v0"
)

// ErrColumnEmpty is returned by Row lookups when the requested column
// name or index is absent (§4.2 "Row access").
var ErrColumnEmpty = fmt.Errorf("frame: column not present in row")

// ByName looks up a column case-sensitively by name, decorating the
// returned Value with its Option so its As* accessors work without a
// separate type argument.
func (r Row) ByName(m *RowsMetadata, name string) (Value, error) {
	for i, c := range m.Columns {
		if c.Name == name {
			return r.ByIndex(m, i)
		}
	}
	return Value{}, ErrColumnEmpty
}

// ByIndex looks up a column by zero-based ordinal.
func (r Row) ByIndex(m *RowsMetadata, i int) (Value, error) {
	if i < 0 || i >= len(r) {
		return Value{}, ErrColumnEmpty
	}
	v := r[i]
	if m != nil && i < len(m.Columns) {
		t := m.Columns[i].Type
		v.Type = &t
	}
	return v, nil
}

func (v Value) typeID() OptionID {
	if v.Type == nil {
		return CustomID
	}
	return v.Type.ID
}

func (v Value) requireType() (Option, error) {
	if v.Type == nil {
		return Option{}, fmt.Errorf("%w: value has no associated type descriptor", ErrConversion)
	}
	return *v.Type, nil
}

// Absent reports whether the value decodes to the host's "absent"
// marker: a null wire value. A not-set value must never appear in a
// decoded result (§3 invariant) and also reads as absent defensively.
func (v Value) Absent() bool { return v.IsNull() || v.IsNotSet() }

func (v Value) AsText() (string, error)   { return DecodeText(v.typeID(), v.Bytes) }
func (v Value) AsBoolean() (bool, error)  { return DecodeBoolean(v.typeID(), v.Bytes) }
func (v Value) AsTinyInt() (int8, error)  { return DecodeTinyInt(v.typeID(), v.Bytes) }
func (v Value) AsSmallInt() (int16, error) { return DecodeSmallInt(v.typeID(), v.Bytes) }
func (v Value) AsInt32() (int32, error)   { return DecodeInt(v.typeID(), v.Bytes) }
func (v Value) AsBigInt() (int64, error)  { return DecodeBigInt(v.typeID(), v.Bytes) }
func (v Value) AsVarint() (*big.Int, error) { return DecodeVarint(v.typeID(), v.Bytes) }
func (v Value) AsFloat() (float32, error) { return DecodeFloat(v.typeID(), v.Bytes) }
func (v Value) AsDouble() (float64, error) { return DecodeDouble(v.typeID(), v.Bytes) }
func (v Value) AsDecimal() (*inf.Dec, error) { return DecodeDecimal(v.typeID(), v.Bytes) }
func (v Value) AsDate() (Date, error)     { return DecodeDate(v.typeID(), v.Bytes) }
func (v Value) AsTime() (time.Duration, error) { return DecodeTime(v.typeID(), v.Bytes) }
func (v Value) AsTimestamp() (time.Time, error) { return DecodeTimestamp(v.typeID(), v.Bytes) }
func (v Value) AsUUID() (UUID, error)     { return DecodeUUID(v.typeID(), v.Bytes) }
func (v Value) AsInet() (net.IP, error)   { return DecodeInet(v.typeID(), v.Bytes) }
func (v Value) AsBlob() ([]byte, error)   { return DecodeBlob(v.typeID(), v.Bytes) }

func (v Value) AsList() ([]Value, error) {
	o, err := v.requireType()
	if err != nil {
		return nil, err
	}
	elems, err := DecodeList(o, v.Bytes)
	if err != nil {
		return nil, err
	}
	for i := range elems {
		elems[i].Type = o.List
	}
	return elems, nil
}

func (v Value) AsMap() ([]MapEntry, error) {
	o, err := v.requireType()
	if err != nil {
		return nil, err
	}
	entries, err := DecodeMap(o, v.Bytes)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Key.Type = &o.Map.Key
		entries[i].Value.Type = &o.Map.Value
	}
	return entries, nil
}

func (v Value) AsTuple() ([]Value, error) {
	o, err := v.requireType()
	if err != nil {
		return nil, err
	}
	elems, err := DecodeTuple(o, v.Bytes)
	if err != nil {
		return nil, err
	}
	for i := range elems {
		elems[i].Type = &o.Tuple[i]
	}
	return elems, nil
}

func (v Value) AsUDT() ([]Value, error) {
	o, err := v.requireType()
	if err != nil {
		return nil, err
	}
	fields, err := DecodeUDT(o, v.Bytes)
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i].Type = &o.UDT.FieldTypes[i]
	}
	return fields, nil
}

// Unmarshal converts the value into dst, which must be a non-nil
// pointer. This is the reflective counterpart of the typed As* methods,
// used when the host type isn't known until runtime (e.g. driving a
// Scan(...interface{}) call) — the "dynamic dispatch map" variant of the
// type-tag polymorphism described in §9.
func (v Value) Unmarshal(dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal destination must be a non-nil pointer", ErrConversion)
	}
	elem := rv.Elem()

	if v.Absent() {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}

	switch p := dst.(type) {
	case *string:
		s, err := v.AsText()
		if err != nil {
			return err
		}
		*p = s
		return nil
	case *bool:
		b, err := v.AsBoolean()
		if err != nil {
			return err
		}
		*p = b
		return nil
	case *int8:
		n, err := v.AsTinyInt()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case *int16:
		n, err := v.AsSmallInt()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case *int32:
		n, err := v.AsInt32()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case *int64:
		n, err := v.AsBigInt()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case *float32:
		n, err := v.AsFloat()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case *float64:
		n, err := v.AsDouble()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case *[]byte:
		b, err := v.AsBlob()
		if err != nil {
			return err
		}
		*p = b
		return nil
	case *UUID:
		u, err := v.AsUUID()
		if err != nil {
			return err
		}
		*p = u
		return nil
	case *net.IP:
		ip, err := v.AsInet()
		if err != nil {
			return err
		}
		*p = ip
		return nil
	case *time.Time:
		t, err := v.AsTimestamp()
		if err != nil {
			return err
		}
		*p = t
		return nil
	case **big.Int:
		n, err := v.AsVarint()
		if err != nil {
			return err
		}
		*p = n
		return nil
	case **inf.Dec:
		d, err := v.AsDecimal()
		if err != nil {
			return err
		}
		*p = d
		return nil
	default:
		return fmt.Errorf("%w: no conversion from %s to %T", ErrConversion, v.typeID(), dst)
	}
}
