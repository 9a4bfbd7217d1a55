package cqldriver

import (
	"context"

	"github.com/scylla-go/cqldriver/frame"
	"github.com/scylla-go/cqldriver/frame/request"
)

// BatchType selects LOGGED/UNLOGGED/COUNTER batch semantics (§4.9 "Batch").
type BatchType = request.BatchType

const (
	BatchLogged   = request.BatchLogged
	BatchUnlogged = request.BatchUnlogged
	BatchCounter  = request.BatchCounter
)

// Batch composes multiple statements to submit as one BATCH request.
// Query and PreparedQuery only accept positional values: BATCH cannot
// encode named values correctly on the wire (request.Batch's doc
// comment), so mixing the two, or using named values at all, is
// rejected when the batch is encoded (§8 scenario 6, enforced by
// request.Batch.validate).
type Batch struct {
	session *Session

	typ               BatchType
	queries           []request.BatchQuery
	consistency       frame.Consistency
	serialConsistency frame.Consistency
	defaultTimestamp  *int64
	tracing           bool
}

// Query appends a CQL text statement to the batch.
func (b *Batch) Query(content string, values ...frame.Value) *Batch {
	b.queries = append(b.queries, request.BatchQuery{Content: content, Values: positional(values)})
	return b
}

// PreparedQuery appends a previously prepared statement to the batch.
func (b *Batch) PreparedQuery(q *Query, values ...frame.Value) *Batch {
	b.queries = append(b.queries, request.BatchQuery{PreparedID: q.preparedID, Values: positional(values)})
	return b
}

func positional(values []frame.Value) []request.BoundValue {
	out := make([]request.BoundValue, len(values))
	for i, v := range values {
		out[i] = request.BoundValue{Value: v}
	}
	return out
}

func (b *Batch) SetConsistency(c frame.Consistency) *Batch {
	b.consistency = c
	return b
}

func (b *Batch) SetSerialConsistency(c frame.Consistency) *Batch {
	b.serialConsistency = c
	return b
}

func (b *Batch) SetTracing(v bool) *Batch {
	b.tracing = v
	return b
}

// Exec submits the batch to one node's connection.
func (b *Batch) Exec(ctx context.Context) (Result, error) {
	n, conn, err := b.session.pickConn()
	if err != nil {
		return Result{}, err
	}
	defer n.Release(conn)

	req := &request.Batch{
		Type:              b.typ,
		Queries:           b.queries,
		Consistency:       b.consistency,
		SerialConsistency: b.serialConsistency,
		DefaultTimestamp:  b.defaultTimestamp,
	}
	res, err := conn.Batch(ctx, req, b.tracing)
	if err != nil {
		return Result{}, classify(err)
	}
	return Result(res), nil
}
