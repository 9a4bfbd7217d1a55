package request

import "github.com/scylla-go/cqldriver/frame"

var _ frame.Request = (*Register)(nil)

// Register subscribes the connection to the given event kinds
// (TOPOLOGY_CHANGE, STATUS_CHANGE, SCHEMA_CHANGE), §4.5.
type Register struct {
	Events frame.StringList
}

func (r *Register) WriteTo(b *frame.Buffer) {
	b.WriteStringList(r.Events)
}

func (*Register) OpCode() frame.OpCode {
	return frame.OpRegister
}
