package response

import "github.com/scylla-go/cqldriver/frame"

// Authenticate announces the server requires authentication and names
// the authenticator class the client's Authenticator must match; the
// transport handshake fails on a mismatch (§4.7 "Handshake").
type Authenticate struct {
	Class string
}

func ParseAuthenticate(b *frame.Buffer) *Authenticate {
	return &Authenticate{Class: b.ReadString()}
}
