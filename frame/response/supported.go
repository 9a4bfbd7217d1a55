package response

import "github.com/scylla-go/cqldriver/frame"

// Supported carries the server's advertised option values (CQL_VERSION,
// COMPRESSION, ...), in reply to OPTIONS.
type Supported struct {
	Options map[string]frame.StringList
}

func ParseSupported(b *frame.Buffer) *Supported {
	return &Supported{Options: b.ReadStringMultiMap()}
}
