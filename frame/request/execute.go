package request

import "github.com/scylla-go/cqldriver/frame"

var _ frame.Request = (*Execute)(nil)

// Execute runs a previously PREPAREd statement by its opaque id (§4.5).
type Execute struct {
	ID     []byte
	Params QueryParams
}

func (e *Execute) WriteTo(b *frame.Buffer) {
	b.WriteShortBytes(e.ID)
	e.Params.WriteTo(b)
}

func (*Execute) OpCode() frame.OpCode {
	return frame.OpExecute
}
