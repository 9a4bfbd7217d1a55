package request

import "github.com/scylla-go/cqldriver/frame"

// Query flag bits (§4.5).
type queryFlags byte

const (
	flagValues            queryFlags = 0x01
	flagSkipMetadata       queryFlags = 0x02
	flagWithPageSize       queryFlags = 0x04
	flagWithPagingState    queryFlags = 0x08
	flagWithSerialConsist  queryFlags = 0x10
	flagWithDefaultTS      queryFlags = 0x20
	flagWithNamesForValues queryFlags = 0x40
)

// BoundValue is a single positional or named bind-marker value.
type BoundValue struct {
	Name  string // empty for positional values
	Value frame.Value
}

// QueryParams is the parameter block shared by QUERY and EXECUTE
// (§4.5): consistency, a flag byte computed from which optional fields
// are present, and the optional fields themselves. BATCH encodes its
// own values and does not use it.
type QueryParams struct {
	Consistency       frame.Consistency
	Values            []BoundValue
	SkipMetadata      bool
	PageSize          int32 // <= 0 means absent
	PagingState       []byte
	SerialConsistency frame.Consistency // 0 (ANY) means absent; callers use SERIAL/LOCALSERIAL
	DefaultTimestamp  *int64

	// disableNamedValues forbids emitting the with-names-for-values flag
	// even if Values carries named entries (§4.5). Nothing in the driver
	// sets it, so it is always false.
	disableNamedValues bool
}

func (p QueryParams) named() bool {
	for _, v := range p.Values {
		if v.Name != "" {
			return true
		}
	}
	return false
}

func (p QueryParams) flags() queryFlags {
	var f queryFlags
	if len(p.Values) > 0 {
		f |= flagValues
	}
	if p.SkipMetadata {
		f |= flagSkipMetadata
	}
	if p.PageSize > 0 {
		f |= flagWithPageSize
	}
	if p.PagingState != nil {
		f |= flagWithPagingState
	}
	if p.SerialConsistency != 0 {
		f |= flagWithSerialConsist
	}
	if p.DefaultTimestamp != nil {
		f |= flagWithDefaultTS
	}
	if !p.disableNamedValues && p.named() {
		f |= flagWithNamesForValues
	}
	return f
}

func (p QueryParams) WriteTo(b *frame.Buffer) {
	b.WriteConsistency(p.Consistency)
	b.WriteByte(byte(p.flags()))

	if len(p.Values) > 0 {
		b.WriteShort(frame.Short(len(p.Values)))
		named := p.flags()&flagWithNamesForValues != 0
		for _, v := range p.Values {
			if named {
				b.WriteString(v.Name)
			}
			b.WriteValue(v.Value)
		}
	}
	if p.PageSize > 0 {
		b.WriteInt(frame.Int(p.PageSize))
	}
	if p.PagingState != nil {
		b.WriteBytes(p.PagingState)
	}
	if p.SerialConsistency != 0 {
		b.WriteConsistency(p.SerialConsistency)
	}
	if p.DefaultTimestamp != nil {
		b.WriteLong(frame.Long(*p.DefaultTimestamp))
	}
}
