package request

import (
	"fmt"

	"github.com/scylla-go/cqldriver/frame"
)

var _ frame.Request = (*Batch)(nil)

// BatchType selects the server-side batch semantics (§4.5).
type BatchType byte

const (
	BatchLogged   BatchType = 0
	BatchUnlogged BatchType = 1
	BatchCounter  BatchType = 2
)

type batchQueryKind byte

const (
	batchQueryString    batchQueryKind = 0
	batchQueryPrepared batchQueryKind = 1
)

// BatchQuery is one statement within a BATCH: either CQL text or a
// prepared id, plus its positional or named values.
type BatchQuery struct {
	PreparedID []byte // non-nil selects the prepared form
	Content    string // used when PreparedID is nil
	Values     []BoundValue
}

func (q BatchQuery) named() bool {
	for _, v := range q.Values {
		if v.Name != "" {
			return true
		}
	}
	return false
}

// writeTo encodes one query's <kind><id_or_string><n><value_1>...; it
// never writes per-value names, since Batch.validate rejects any named
// value before this runs (see Batch's doc comment for why).
func (q BatchQuery) writeTo(b *frame.Buffer) {
	if q.PreparedID != nil {
		b.WriteByte(byte(batchQueryPrepared))
		b.WriteShortBytes(q.PreparedID)
	} else {
		b.WriteByte(byte(batchQueryString))
		b.WriteLongString(q.Content)
	}

	b.WriteShort(frame.Short(len(q.Values)))
	for _, v := range q.Values {
		b.WriteValue(v.Value)
	}
}

// Batch composes LOGGED/UNLOGGED/COUNTER batches of queries (§4.5).
//
// Named values are rejected outright, not just mixed with positional
// ones: the native protocol's own spec documents the BATCH names flag
// as unimplementable server-side (CASSANDRA-10246, see
// original_source's frame_batch.rs), so there is no flag value this
// encoder could set that a real server would honor. A batch whose
// queries mix named and positional values, or use named values at all,
// fails locally before any bytes reach the wire (§8 scenario 6).
type Batch struct {
	Type              BatchType
	Queries           []BatchQuery
	Consistency       frame.Consistency
	SerialConsistency frame.Consistency
	DefaultTimestamp  *int64
}

// ErrInconsistentValues is returned when a batch mixes named and
// positional values across its queries.
var ErrInconsistentValues = fmt.Errorf("request: inconsistent query values")

// ErrNamedValuesUnsupported is returned when any query in a batch uses
// named values, which BATCH cannot encode correctly on the wire.
var ErrNamedValuesUnsupported = fmt.Errorf("request: batch queries cannot use named values")

func (batch *Batch) WriteTo(b *frame.Buffer) {
	if err := batch.validate(); err != nil {
		b.Fail(err)
		return
	}

	b.WriteByte(byte(batch.Type))
	b.WriteShort(frame.Short(len(batch.Queries)))
	for _, q := range batch.Queries {
		q.writeTo(b)
	}

	b.WriteConsistency(batch.Consistency)

	var flags queryFlags
	if batch.SerialConsistency != 0 {
		flags |= flagWithSerialConsist
	}
	if batch.DefaultTimestamp != nil {
		flags |= flagWithDefaultTS
	}
	b.WriteByte(byte(flags))

	if batch.SerialConsistency != 0 {
		b.WriteConsistency(batch.SerialConsistency)
	}
	if batch.DefaultTimestamp != nil {
		b.WriteLong(frame.Long(*batch.DefaultTimestamp))
	}
}

func (batch *Batch) validate() error {
	sawNamed, sawPositional := false, false
	for _, q := range batch.Queries {
		if len(q.Values) == 0 {
			continue
		}
		if q.named() {
			sawNamed = true
		} else {
			sawPositional = true
		}
	}
	switch {
	case sawNamed && sawPositional:
		return ErrInconsistentValues
	case sawNamed:
		return ErrNamedValuesUnsupported
	default:
		return nil
	}
}

func (*Batch) OpCode() frame.OpCode {
	return frame.OpBatch
}
