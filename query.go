package cqldriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/scylla-go/cqldriver/frame"
	"github.com/scylla-go/cqldriver/frame/request"
	"github.com/scylla-go/cqldriver/frame/response"
	"github.com/scylla-go/cqldriver/transport"
)

// queryParamsBuilder accumulates the bits of request.QueryParams a
// Query exposes setters for, so Query itself stays a thin façade over
// the wire type.
type queryParamsBuilder struct {
	consistency       frame.Consistency
	serialConsistency frame.Consistency
	pageSize          int32
	pagingState       []byte
	defaultTimestamp  *int64
	skipMetadata      bool
	values            []request.BoundValue
}

func (b queryParamsBuilder) build() request.QueryParams {
	return request.QueryParams{
		Consistency:       b.consistency,
		Values:            b.values,
		SkipMetadata:      b.skipMetadata,
		PageSize:          b.pageSize,
		PagingState:       b.pagingState,
		SerialConsistency: b.serialConsistency,
		DefaultTimestamp:  b.defaultTimestamp,
	}
}

// Query represents one statement, either ad hoc CQL text or bound to a
// prepared id, ready to Bind values and Exec (§4.9 "Query"/"Execute").
type Query struct {
	session *Session

	content    string
	preparedID []byte
	paramMeta  frame.ResultMetadata
	resultMeta frame.ResultMetadata

	params  queryParamsBuilder
	tracing bool
	err     error
}

func (q *Query) prepared() bool { return q.preparedID != nil }

// ParamsMetadata returns the bind-marker metadata a prepared statement
// carries; it is the zero value for an unprepared Query.
func (q *Query) ParamsMetadata() frame.ResultMetadata { return q.paramMeta }

// ResultMetadata returns the column metadata a prepared statement
// carries; it is the zero value for an unprepared Query.
func (q *Query) ResultMetadata() frame.ResultMetadata { return q.resultMeta }

// Bind sets the positional bind marker at pos.
func (q *Query) Bind(pos int, v frame.Value) *Query {
	for len(q.params.values) <= pos {
		q.params.values = append(q.params.values, request.BoundValue{})
	}
	q.params.values[pos].Value = v
	return q
}

// BindNamed sets a named bind marker.
func (q *Query) BindNamed(name string, v frame.Value) *Query {
	q.params.values = append(q.params.values, request.BoundValue{Name: name, Value: v})
	return q
}

func (q *Query) SetConsistency(c frame.Consistency) *Query {
	q.params.consistency = c
	return q
}

func (q *Query) SetSerialConsistency(c frame.Consistency) *Query {
	q.params.serialConsistency = c
	return q
}

func (q *Query) SetPageSize(n int32) *Query {
	q.params.pageSize = n
	return q
}

// SetPageState resumes paging from a cursor previously obtained from
// Iter.PageState, e.g. across process restarts (§4.9).
func (q *Query) SetPageState(state []byte) *Query {
	q.params.pagingState = state
	return q
}

func (q *Query) SetDefaultTimestamp(ts int64) *Query {
	q.params.defaultTimestamp = &ts
	return q
}

func (q *Query) SetTracing(v bool) *Query {
	q.tracing = v
	return q
}

func (q *Query) execOn(ctx context.Context, conn *transport.Conn) (transport.QueryResult, error) {
	if q.prepared() {
		return conn.Execute(ctx, q.preparedID, q.params.build(), q.tracing)
	}
	return conn.Query(ctx, q.content, q.params.build(), q.tracing)
}

// Exec runs the query once, retrying a single time if the server
// reports it forgot the prepared statement id (§7 "Retries").
func (q *Query) Exec(ctx context.Context) (Result, error) {
	if q.err != nil {
		return Result{}, newError(GeneralError, q.err)
	}

	n, conn, err := q.session.pickConn()
	if err != nil {
		return Result{}, err
	}
	defer n.Release(conn)

	res, err := q.execOn(ctx, conn)
	if err != nil {
		if q.prepared() {
			var unprepared *response.UnpreparedError
			if errors.As(err, &unprepared) {
				if rerr := q.reprepare(ctx, conn); rerr != nil {
					return Result{}, classify(rerr)
				}
				res, err = q.execOn(ctx, conn)
			}
		}
		if err != nil {
			return Result{}, classify(err)
		}
	}
	return Result(res), nil
}

func (q *Query) reprepare(ctx context.Context, conn *transport.Conn) error {
	p, err := conn.Prepare(ctx, q.content, false)
	if err != nil {
		return err
	}
	q.preparedID = p.ID
	q.paramMeta = p.ParametersMetadata
	q.resultMeta = p.ResultMetadata
	return nil
}

// Result wraps the parsed RESULT body together with the tracing id and
// warnings the server attached, when requested.
type Result transport.QueryResult

// Rows returns the result's row payload, or an error if the statement
// didn't produce rows (e.g. an INSERT).
func (r Result) Rows() (frame.RowsMetadata, []frame.Row, error) {
	rows, ok := r.Result.(*response.Rows)
	if !ok {
		return frame.RowsMetadata{}, nil, newError(GeneralError, fmt.Errorf("cqldriver: result has no rows (%T)", r.Result))
	}
	return rows.Metadata, rows.RowsData, nil
}

// Iter runs the query across every page, fetching the next page only
// when the caller asks for one past the end of the current page
// (§4.9 "Paging", grounded on original_source's pager.next()).
func (q *Query) Iter(ctx context.Context) *Iter {
	return &Iter{ctx: ctx, q: queryRunner{q}}
}

// queryRunner adapts *Query to pageRunner, whose SetPageState has no
// chaining result.
type queryRunner struct{ *Query }

func (r queryRunner) SetPageState(state []byte) { r.Query.SetPageState(state) }

// pageRunner is the slice of Query an Iter drives: fetch the next page
// and carry the resulting paging state into the following fetch. Tests
// substitute a fake to exercise paging without a live connection.
type pageRunner interface {
	Exec(ctx context.Context) (Result, error)
	SetPageState(state []byte)
}

// Iter is a forward-only cursor over a query's result pages.
type Iter struct {
	ctx context.Context
	q   pageRunner

	meta    frame.RowsMetadata
	rows    []frame.Row
	pos     int
	started bool
	done    bool
	err     error
}

// Next advances to the next row, fetching a new page from the server
// when the current one is exhausted. It returns false when there are
// no more rows or an error occurred; check Err afterward.
func (it *Iter) Next() (frame.Row, bool) {
	if it.done {
		return nil, false
	}

	for it.pos >= len(it.rows) {
		if it.started && !it.meta.Flags.Has(frame.HasMorePages) {
			it.done = true
			return nil, false
		}
		it.started = true

		res, err := it.q.Exec(it.ctx)
		if err != nil {
			it.err = err
			it.done = true
			return nil, false
		}
		meta, rows, err := res.Rows()
		if err != nil {
			it.err = err
			it.done = true
			return nil, false
		}
		it.meta, it.rows, it.pos = meta, rows, 0
		it.q.SetPageState(meta.PagingState)

		if len(rows) == 0 && meta.Flags.Has(frame.HasMorePages) {
			continue
		}
		if len(rows) == 0 {
			it.done = true
			return nil, false
		}
	}

	row := it.rows[it.pos]
	it.pos++
	return row, true
}

func (it *Iter) Err() error { return it.err }

// HasMore reports whether a further page exists beyond the one Next is
// currently walking. It is false before the first page is fetched and
// on the page where the server reports has-more-pages = false (§4.9
// "Paging").
func (it *Iter) HasMore() bool {
	return it.started && it.meta.Flags.Has(frame.HasMorePages)
}

// PageState exports the current paging cursor so a caller can persist
// it and resume with Query.SetPageState later.
func (it *Iter) PageState() []byte { return it.meta.PagingState }

func (it *Iter) Columns() []frame.ColumnSpec { return it.meta.Columns }
