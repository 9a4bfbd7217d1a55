package request

import "github.com/scylla-go/cqldriver/frame"

var _ frame.Request = (*Prepare)(nil)

// Prepare asks the server to compile and cache a CQL statement (§4.5).
type Prepare struct {
	Content string
}

func (p *Prepare) WriteTo(b *frame.Buffer) {
	b.WriteLongString(p.Content)
}

func (*Prepare) OpCode() frame.OpCode {
	return frame.OpPrepare
}
