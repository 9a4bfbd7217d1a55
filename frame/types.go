package frame

import (
	"encoding/hex"
	"fmt"
)

// Wire-primitive host types (§4.1). Short is unsigned per spec; Int/Long
// are signed. All three are big-endian on the wire (see buffer.go).
type (
	Short uint16
	Int   int32
	Long  int64
	Bytes = []byte
)

// StringList is an ordered text sequence ([short count][string]*).
type StringList []string

// StartupOptions is the string multimap sent in a STARTUP request; it
// MUST include CQL_VERSION and MAY include COMPRESSION (§4.5).
type StartupOptions map[string]string

// Consistency is the short-encoded consistency level (§4.1).
type Consistency Short

const (
	ANY         Consistency = 0x0000
	ONE         Consistency = 0x0001
	TWO         Consistency = 0x0002
	THREE       Consistency = 0x0003
	QUORUM      Consistency = 0x0004
	ALL         Consistency = 0x0005
	LOCALQUORUM Consistency = 0x0006
	EACHQUORUM  Consistency = 0x0007
	SERIAL      Consistency = 0x0008
	LOCALSERIAL Consistency = 0x0009
	LOCALONE    Consistency = 0x000A
)

func (c Consistency) Valid() bool {
	return c <= LOCALONE
}

func (c Consistency) String() string {
	switch c {
	case ANY:
		return "ANY"
	case ONE:
		return "ONE"
	case TWO:
		return "TWO"
	case THREE:
		return "THREE"
	case QUORUM:
		return "QUORUM"
	case ALL:
		return "ALL"
	case LOCALQUORUM:
		return "LOCAL_QUORUM"
	case EACHQUORUM:
		return "EACH_QUORUM"
	case SERIAL:
		return "SERIAL"
	case LOCALSERIAL:
		return "LOCAL_SERIAL"
	case LOCALONE:
		return "LOCAL_ONE"
	default:
		return fmt.Sprintf("Consistency(%d)", Short(c))
	}
}

// UUID is a 16-byte universally unique identifier, used for tracing ids,
// `uuid`/`timeuuid` column values, and node host ids.
type UUID [16]byte

func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf[:])
}

func UUIDFromBytes(p []byte) (UUID, error) {
	var u UUID
	if len(p) != 16 {
		return u, fmt.Errorf("%w: uuid must be 16 bytes, got %d", ErrConversion, len(p))
	}
	copy(u[:], p)
	return u, nil
}

// --- CQL value (§3 "CQL value") ---

type valueState int8

const (
	valueNormal valueState = iota
	valueNull
	valueNotSet
)

// Value is a single column's wire representation: either a normal
// length-prefixed byte string, a null (length -1), or a not-set
// (length -2, legal only in request parameters). Type is populated when
// a Value is produced from a decoded Row (via RowsMetadata's column
// specs) so the As* accessors in value_access.go can validate and
// convert without a separate type argument; it is nil for
// caller-constructed request-parameter values.
type Value struct {
	Bytes []byte
	Type  *Option
	state valueState
}

func NullValue() Value              { return Value{state: valueNull} }
func NotSetValue() Value            { return Value{state: valueNotSet} }
func BytesValue(b []byte) Value     { return Value{Bytes: b} }
func (v Value) IsNull() bool        { return v.state == valueNull }
func (v Value) IsNotSet() bool      { return v.state == valueNotSet }
func (v Value) IsNormal() bool      { return v.state == valueNormal }

// --- CQL type descriptor (§3 "CQL type descriptor") ---

type OptionID Short

const (
	CustomID    OptionID = 0x0000
	AsciiID     OptionID = 0x0001
	BigintID    OptionID = 0x0002
	BlobID      OptionID = 0x0003
	BooleanID   OptionID = 0x0004
	CounterID   OptionID = 0x0005
	DecimalID   OptionID = 0x0006
	DoubleID    OptionID = 0x0007
	FloatID     OptionID = 0x0008
	IntID       OptionID = 0x0009
	TimestampID OptionID = 0x000B
	UuidID      OptionID = 0x000C
	VarcharID   OptionID = 0x000D
	VarintID    OptionID = 0x000E
	TimeuuidID  OptionID = 0x000F
	InetID      OptionID = 0x0010
	DateID      OptionID = 0x0011
	TimeID      OptionID = 0x0012
	SmallintID  OptionID = 0x0013
	TinyintID   OptionID = 0x0014
	ListID      OptionID = 0x0020
	MapID       OptionID = 0x0021
	SetID       OptionID = 0x0022
	UDTID       OptionID = 0x0030
	TupleID     OptionID = 0x0031
)

func (id OptionID) String() string {
	switch id {
	case CustomID:
		return "custom"
	case AsciiID:
		return "ascii"
	case BigintID:
		return "bigint"
	case BlobID:
		return "blob"
	case BooleanID:
		return "boolean"
	case CounterID:
		return "counter"
	case DecimalID:
		return "decimal"
	case DoubleID:
		return "double"
	case FloatID:
		return "float"
	case IntID:
		return "int"
	case TimestampID:
		return "timestamp"
	case UuidID:
		return "uuid"
	case VarcharID:
		return "varchar"
	case VarintID:
		return "varint"
	case TimeuuidID:
		return "timeuuid"
	case InetID:
		return "inet"
	case DateID:
		return "date"
	case TimeID:
		return "time"
	case SmallintID:
		return "smallint"
	case TinyintID:
		return "tinyint"
	case ListID:
		return "list"
	case MapID:
		return "map"
	case SetID:
		return "set"
	case UDTID:
		return "udt"
	case TupleID:
		return "tuple"
	default:
		return fmt.Sprintf("OptionID(0x%04x)", Short(id))
	}
}

// MapOption is the key+value descriptor nested under a `map` Option.
type MapOption struct {
	Key   Option
	Value Option
}

// UDTOption describes a user-defined type: keyspace, name, and its
// ordered (field name, field type) pairs.
type UDTOption struct {
	Keyspace   string
	Name       string
	FieldNames []string
	FieldTypes []Option
}

// Option is a CQL type descriptor: a tag plus, for the five composite
// tags, a nested descriptor (§3).
type Option struct {
	ID     OptionID
	Custom string     // only set when ID == CustomID
	List   *Option    // only set when ID == ListID or SetID
	Map    *MapOption // only set when ID == MapID
	Tuple  []Option   // only set when ID == TupleID
	UDT    *UDTOption // only set when ID == UDTID
}

func (o Option) String() string {
	switch o.ID {
	case CustomID:
		return fmt.Sprintf("custom(%s)", o.Custom)
	case ListID:
		return fmt.Sprintf("list<%s>", o.List)
	case SetID:
		return fmt.Sprintf("set<%s>", o.List)
	case MapID:
		return fmt.Sprintf("map<%s, %s>", o.Map.Key, o.Map.Value)
	case TupleID:
		return fmt.Sprintf("tuple%v", o.Tuple)
	case UDTID:
		return fmt.Sprintf("%s.%s", o.UDT.Keyspace, o.UDT.Name)
	default:
		return o.ID.String()
	}
}

// ColumnSpec is a single column's name and type, with an optional
// per-column keyspace/table pair present when the owning RowsMetadata
// does not set the global-table-space flag (§3 "Row").
type ColumnSpec struct {
	Keyspace string
	Table    string
	Name     string
	Type     Option
}

// RowsMetadata flag bits (§3 "Row").
type MetadataFlags Int

const (
	GlobalTableSpec MetadataFlags = 0x0001
	HasMorePages    MetadataFlags = 0x0002
	NoMetadata      MetadataFlags = 0x0004
)

func (f MetadataFlags) Has(bit MetadataFlags) bool { return f&bit != 0 }

// RowsMetadata accompanies a RESULT Rows body (and, as ResultMetadata, a
// prepared statement's result columns / parameters metadata).
type RowsMetadata struct {
	Flags          MetadataFlags
	ColumnsCount   int32
	PagingState    []byte // present iff Flags.Has(HasMorePages)
	GlobalKeyspace string // present iff Flags.Has(GlobalTableSpec)
	GlobalTable    string
	Columns        []ColumnSpec // absent iff Flags.Has(NoMetadata)

	// PkIndexes is only populated for a prepared statement's *parameters*
	// metadata: the ordered list of column indexes that form the
	// partition key (§3 "Prepared statement").
	PkIndexes []Short
}

// ResultMetadata is the same shape as RowsMetadata; it is named
// separately because a prepared statement caches one of each kind
// (parameters metadata and result metadata, §3).
type ResultMetadata = RowsMetadata

// Row is an ordered vector of CQL values; every row accompanying one
// RowsMetadata has ColumnsCount values (§3 invariant).
type Row []Value

// --- request/response framing contracts ---

// Request is anything that can be written as a frame body; OpCode
// identifies which opcode the header must carry.
type Request interface {
	WriteTo(b *Buffer)
	OpCode() OpCode
}

// Response is a parsed frame body. It is an empty marker interface: the
// concrete type IS the contract (Ready, Supported, a Result variant, a
// CodedError, ...); callers type-switch or type-assert on it.
type Response interface{}
