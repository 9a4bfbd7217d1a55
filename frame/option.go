package frame

import "fmt"

// WriteTo serializes a CQL type descriptor. The wire protocol never
// requires the client to send one (column specs only ever flow
// server->client), but the driver's own test fixtures build RowsMetadata
// without a live server, so encode and decode are both provided and are
// each other's inverse.
func (o Option) WriteTo(b *Buffer) {
	b.WriteShort(Short(o.ID))
	switch o.ID {
	case CustomID:
		b.WriteString(o.Custom)
	case ListID, SetID:
		o.List.WriteTo(b)
	case MapID:
		o.Map.Key.WriteTo(b)
		o.Map.Value.WriteTo(b)
	case TupleID:
		b.WriteShort(Short(len(o.Tuple)))
		for _, e := range o.Tuple {
			e.WriteTo(b)
		}
	case UDTID:
		b.WriteString(o.UDT.Keyspace)
		b.WriteString(o.UDT.Name)
		b.WriteShort(Short(len(o.UDT.FieldNames)))
		for i := range o.UDT.FieldNames {
			b.WriteString(o.UDT.FieldNames[i])
			o.UDT.FieldTypes[i].WriteTo(b)
		}
	}
}

// ParseOption reads a CQL type descriptor.
func ParseOption(b *Buffer) Option {
	id := OptionID(b.ReadShort())
	if b.Error() != nil {
		return Option{}
	}

	o := Option{ID: id}
	switch id {
	case CustomID:
		o.Custom = b.ReadString()
	case ListID, SetID:
		elem := ParseOption(b)
		o.List = &elem
	case MapID:
		key := ParseOption(b)
		val := ParseOption(b)
		o.Map = &MapOption{Key: key, Value: val}
	case TupleID:
		n := int(b.ReadShort())
		o.Tuple = make([]Option, n)
		for i := range o.Tuple {
			o.Tuple[i] = ParseOption(b)
		}
	case UDTID:
		u := &UDTOption{}
		u.Keyspace = b.ReadString()
		u.Name = b.ReadString()
		n := int(b.ReadShort())
		u.FieldNames = make([]string, n)
		u.FieldTypes = make([]Option, n)
		for i := 0; i < n; i++ {
			u.FieldNames[i] = b.ReadString()
			u.FieldTypes[i] = ParseOption(b)
		}
		o.UDT = u
	default:
		if !isKnownOptionID(id) {
			b.fail(fmt.Errorf("%w: unknown type descriptor id 0x%04x", ErrMalformedFrame, Short(id)))
		}
	}
	return o
}

func isKnownOptionID(id OptionID) bool {
	switch id {
	case CustomID, AsciiID, BigintID, BlobID, BooleanID, CounterID, DecimalID,
		DoubleID, FloatID, IntID, TimestampID, UuidID, VarcharID, VarintID,
		TimeuuidID, InetID, DateID, TimeID, SmallintID, TinyintID,
		ListID, MapID, SetID, UDTID, TupleID:
		return true
	default:
		return false
	}
}
