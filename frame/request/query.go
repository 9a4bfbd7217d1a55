package request

import "github.com/scylla-go/cqldriver/frame"

var _ frame.Request = (*Query)(nil)

// Query is a simple (non-prepared) CQL statement plus its parameters
// (§4.5).
type Query struct {
	Content string
	Params  QueryParams
}

func (q *Query) WriteTo(b *frame.Buffer) {
	b.WriteLongString(q.Content)
	q.Params.WriteTo(b)
}

func (*Query) OpCode() frame.OpCode {
	return frame.OpQuery
}
