package request

import (
	"sort"

	"github.com/scylla-go/cqldriver/frame"
)

var _ frame.Request = (*Startup)(nil)

// Startup is the string multimap sent to begin the STARTUP/READY
// handshake (§4.5). It MUST include CQL_VERSION and MAY include
// COMPRESSION; it is never sent compressed (§4.4).
type Startup struct {
	Options frame.StartupOptions
}

func NewStartup(compression string) *Startup {
	opts := frame.StartupOptions{"CQL_VERSION": "3.0.0"}
	if compression != "" {
		opts["COMPRESSION"] = compression
	}
	return &Startup{Options: opts}
}

func (s *Startup) WriteTo(b *frame.Buffer) {
	keys := make([]string, 0, len(s.Options))
	for k := range s.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteShort(frame.Short(len(s.Options)))
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(s.Options[k])
	}
}

func (*Startup) OpCode() frame.OpCode {
	return frame.OpStartup
}
